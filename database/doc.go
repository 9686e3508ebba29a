// Package database manages the bun connection behind the roster repositories:
// dialect selection, pooling, health checks, query hooks, schema migrations
// for registered models, foreign keys and seed SQL.
package database
