// Package travel defines the Destination/Package aggregate, its structural
// rules, and the error kinds every persistence operation reports.
package travel
