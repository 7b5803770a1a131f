// Package filter removes subtitle events by style name, layer number, or
// event kind.
//
// The package is built around the [Filter] interface and [Chain] type, which
// allow composable, ordered filter application. [Events] is the common entry
// point: it keeps an event only when neither its style nor its layer is in
// the respective exclusion set.
package filter
