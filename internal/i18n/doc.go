// Package i18n holds the devicedash message catalog and language selection.
//
// Messages are registered with golang.org/x/text/message at init time for
// Simplified Chinese (the default) and English. Page titles, form labels,
// and the generic request failure text all come from this catalog.
package i18n
