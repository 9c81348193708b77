package app

// defaults lets the service boot without a config file.
func defaults() map[string]any {
	return map[string]any{
		"app.name":    "TOTPHog",
		"app.version": "dev",
		"app.tz":      "UTC",

		"app.server.http.address":                     ":8080",
		"app.server.http.read_timeout_seconds":        15,
		"app.server.http.read_header_timeout_seconds": 5,
		"app.server.http.write_timeout_seconds":       15,
		"app.server.http.idle_timeout_seconds":        60,
		"app.server.cors":                             "*",
		"app.server.max_goroutine":                    64,

		"vault.path":           "./var/tokens.json",
		"vault.default_issuer": "TOTPHog",
		"vault.qr_size":        256,
		"vault.verify_skew":    1,

		"instrument.enabled":                 false,
		"instrument.service_name":            "totphog",
		"instrument.service_version":         "dev",
		"instrument.env":                     "local",
		"instrument.trace_sample_ratio":      1.0,
		"instrument.metric_interval_seconds": 15,
		"instrument.log_level":               "info",
		"instrument.log_mask_fields":         "secret,uri",

		"messaging.driver":      "",
		"messaging.destination": "totphog.credential",

		"messaging.nats.max_reconnects":         60,
		"messaging.nats.timeout_seconds":        2,
		"messaging.nats.reconnect_wait_seconds": 2,
		"messaging.kafka.dial_timeout_seconds":  5,

		"storage.driver": "",
		"storage.bucket": "totphog",
		"storage.prefix": "snapshots",
	}
}
