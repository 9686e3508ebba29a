// Package repository provides the generic bun repository and the member and
// team repositories built on it. Repositories accept bun.IDB, so the same
// value works on a *bun.DB or inside database.RunInTx.
package repository
