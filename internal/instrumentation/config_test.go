package instrumentation

import "testing"

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{"OTEL_SERVICE_NAME", "INSTRUMENTATION_ENABLED", "METRICS_EXPORTER", "TRACING_EXPORTER", "OTEL_TRACES_SAMPLER_ARG", "AUDIT_LOGGING_INCLUDE_PII"} {
		t.Setenv(key, "")
	}

	config := DefaultConfig()
	if config.ServiceName != "gapidemo" {
		t.Errorf("ServiceName = %q, want gapidemo", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("Enabled should default to true")
	}
	if config.MetricsExporter != ExporterPrometheus || config.TracingExporter != ExporterNone {
		t.Errorf("exporters = %q/%q", config.MetricsExporter, config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("TraceSamplingRate = %v, want 0.1", config.TraceSamplingRate)
	}
	if !config.AuditLogging.Enabled || config.AuditLogging.IncludePII {
		t.Errorf("AuditLogging = %+v", config.AuditLogging)
	}
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom")
	t.Setenv("INSTRUMENTATION_ENABLED", "false")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.5")
	t.Setenv("METRICS_DETAILED_LABELS", "not-a-bool")

	config := DefaultConfig()
	if config.ServiceName != "custom" || config.Enabled {
		t.Errorf("unexpected config: %+v", config)
	}
	if config.TracingExporter != ExporterOTLP || config.OTLPEndpoint != "collector:4318" {
		t.Errorf("unexpected tracing config: %+v", config)
	}
	if config.TraceSamplingRate != 0.5 {
		t.Errorf("TraceSamplingRate = %v", config.TraceSamplingRate)
	}
	if config.DetailedLabels {
		t.Error("invalid bool should fall back to the default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "defaults", config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone, TraceSamplingRate: 0.1}},
		{name: "empty exporters", config: Config{}},
		{name: "sampling too high", config: Config{TraceSamplingRate: 1.5}, wantErr: true},
		{name: "sampling negative", config: Config{TraceSamplingRate: -0.1}, wantErr: true},
		{name: "bad metrics exporter", config: Config{MetricsExporter: "statsd"}, wantErr: true},
		{name: "bad tracing exporter", config: Config{TracingExporter: "jaeger"}, wantErr: true},
		{name: "otlp without endpoint", config: Config{TracingExporter: ExporterOTLP}, wantErr: true},
		{name: "otlp with endpoint", config: Config{MetricsExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(nil) != StatusSuccess {
		t.Error("nil error should be success")
	}
	if StatusOf(errTest) != StatusError {
		t.Error("non-nil error should be error")
	}
}

type testError struct{}

func (testError) Error() string { return "test" }

var errTest error = testError{}
