// Package registry reads the buyer registry: a published spreadsheet whose
// rows are [name, email, machine id, expiry date].
//
// A fetch never fails. Transport errors, non-200 responses and unparseable
// feeds all produce an empty Snapshot, which callers must read as "unknown"
// and never as "nobody is licensed".
//
// Two sources are provided:
//
//	Client        CSV export over plain HTTP (the default)
//	SheetsSource  Google Sheets values API, used when an API key is configured
package registry
