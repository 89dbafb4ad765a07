package core

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "care-companion/core"

// Instruments come from the global providers, so they are no-ops until
// telemetry.InitTelemetry installs real ones.
var tracer = otel.Tracer(instrumentationName)

func meter() metric.Meter { return otel.Meter(instrumentationName) }
