// Package config loads vitrine's configuration file.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/vitrine/config.toml
//  3. If the file doesn't exist, use defaults
//  4. Apply VITRINE_API_URL, VITRINE_STORAGE_BACKEND and VITRINE_REDIS_URL
//
// Files ending in .yaml or .yml are parsed as YAML; anything else as TOML.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8081/api/v1"
//
//	[storage]
//	backend = "file"            # file, sqlite, redis, memory
//	path = "~/.local/share/vitrine"
//	redis_url = "redis://localhost:6379"
//
//	[compare]
//	capacity = 4
//
//	[wishlist]
//	capacity = 50
//
//	[listing]
//	page_size = 12
//	price_min = 0
//	price_max = 300000
//
//	[refresh]
//	interval = 60               # seconds, 0 disables
//
//	[log]
//	path = "~/.local/state/vitrine/vitrine.log"
//	level = "info"
//
// Every field is optional. Tilde expansion is performed on paths.
//
// # Error Handling
//
// Load returns errors for unreadable or unparsable files and for values that
// cannot work (unknown backend, non-positive capacity, inverted price range).
// A missing file is NOT an error.
package config
