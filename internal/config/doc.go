// Package config loads the AgroInvest engine configuration.
//
// Values are layered: Default() first, then an optional YAML file, then
// environment variables with the AGRO prefix. The file is taken from
// AGRO_CONFIG_FILE or, failing that, the first of config.yaml,
// configs/config.yaml, ../configs/config.yaml and ../../configs/config.yaml
// that exists.
//
// Environment variables follow the struct layout:
//
//	AGRO_SERVER_PORT=9090
//	AGRO_LOGGING_LEVEL=debug
//	AGRO_DATASET_PATH=data/sadc.xlsx
//	AGRO_ANALYSIS_GAP_HIGH_THRESHOLD=0.6
//	AGRO_ANALYSIS_CAPACITY_UTILIZATION_PCT=80
//	AGRO_TELEMETRY_TRACE_EXPORTER=stdout
//
// The Analysis section carries the scoring policy defaults: gap severity
// thresholds, the trend window, the default operating cost ratio and the
// plant assumptions of the capacity ROI model. Log output is always JSON.
package config
