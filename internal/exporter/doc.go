// Package exporter writes normalized market records as CSV or XLSX.
//
// Two renderings are available. The raw rendering keeps numbers machine
// readable and leaves absent values empty. The display rendering matches the
// dashboard: CAD amounts without decimals, grouped integers, percentages as
// "{v}%" and "N/A" for absent values.
//
//	err := exporter.WriteCSV(w, domain.GranularityWeekly, snap, exporter.Options{Display: true})
package exporter
