// Package redisstore keeps deviceauth challenges in Redis.
//
// Each challenge is a hash under "<prefix><challenge id>" that expires a
// retention period after the challenge itself. Consumption runs a Lua script,
// which Redis executes atomically, so concurrent approvals of one challenge
// cannot both succeed. Timestamps are stored as Unix microseconds.
//
//	store := redisstore.New(client)
//	svc, err := deviceauth.NewService(pgStorage, key, deviceauth.WithChallengeStorage(store))
package redisstore
