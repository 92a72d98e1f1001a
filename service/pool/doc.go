// Package pool provides a fixed-capacity slab allocator with O(1) Alloc and
// Free. Objects are addressed through generation-checked handles which also
// carry the identity of the issuing pool, so double frees, frees of stale
// handles and frees of objects carved by another pool are all rejected
// without touching the free list.
package pool
