// Package config loads typed configuration from the environment.
//
// Structs describe their settings with caarlos0/env tags; Load fills them from
// process variables, falling back to a ./.env file read once through
// joho/godotenv. Each package owns its own Config struct (pg.Config,
// redis.Config, push.Config, ...) and cmd/server loads them one by one.
package config
