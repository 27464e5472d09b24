// Package listview holds the pure list-screen pipeline shared by the API
// and the Go client: filter → scope → sort/group → paginate, plus the
// selection and bulk-mode state used for bulk operations.
//
// Everything here operates on Item, so server records and client-side
// JSON maps run through the same code.
package listview

// Item is a row the pipeline can read text values from.
type Item interface {
	Value(field string) string
}
