// Package backupcodes manages single-use recovery codes for multi-factor
// authentication.
//
// Each code carries 40 bits of entropy (5 random bytes rendered as 10 hex
// characters) and is stored only as a salted bcrypt hash. Consumption removes
// exactly one matching entry from the stored list; regenerating codes fully
// replaces the previous list, invalidating all earlier codes at once.
package backupcodes
