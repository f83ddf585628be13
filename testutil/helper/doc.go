// Package helper provides test doubles for the observability interfaces of the economy package.
package helper
