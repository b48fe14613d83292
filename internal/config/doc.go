// Package config provides configuration management for the sales dashboard.
//
// # Configuration Sources
//
// Configuration is assembled in this order, later sources winning:
//
//	1. Default values declared in struct tags
//	2. A .env file in the working directory (loaded into the environment)
//	3. Environment variables with the VGS_ prefix
//	4. A YAML file (VGS_CONFIG_FILE, config.yaml or configs/config.yaml)
//
// # Environment Variables
//
// Nested sections compose their names:
//
//	VGS_SERVER_PORT=8080
//	VGS_LOGGING_LEVEL=debug
//	VGS_DATASET_IDENTIFIER=gregorut/videogamesales
//	VGS_DATASET_LOCAL_DIR=/srv/vgsales
//	VGS_DASHBOARD_PLATFORM_TOP_N=15
//
// # Paths
//
// GetPaths resolves cache, log and credential locations. When no credentials
// file is configured the dataset source falls back to ~/.kaggle/kaggle.json.
package config
