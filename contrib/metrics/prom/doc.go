// Package prom provides a Prometheus client_golang implementation of
// types.MetricsCollector.
//
// Metrics are registered with a prometheus.Registerer (the default registry
// unless WithRegisterer is given) and share the metric names of
// contrib/metrics/vm, so dashboards work with either backend:
//
//	collector := prom.New(prom.WithNamespace("myapp"))
//	env, _ := odbc.NewEnvironment(drv, odbc.WithMetrics(collector))
//
//	http.Handle("/metrics", promhttp.Handler())
package prom
