// Package config handles loading and validating Hearth configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields per device type
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (Hue users, Nanoleaf tokens, Tuya local keys) should
//     be kept out of version control
//   - The config file should have restricted permissions (0600)
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(cfg.Devices))
package config
