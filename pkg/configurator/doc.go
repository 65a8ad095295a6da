// Package configurator runs heuristic project configurators when a folder is
// opened without project metadata.
//
// Configurators are registered in a [Registry] as [Handler] closures tagged
// with an [ExecContext]. A [Dispatcher] runs every registered configurator
// against a [Request]: primary configurators run one at a time, in
// registration order, on the primary [Loop]; background configurators run
// concurrently on a bounded worker pool. Failures are isolated per
// configurator and collected into a [Report].
package configurator
