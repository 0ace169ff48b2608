// Package grid provides the tile map shared between the host and the
// pathfinding modules.
//
// The host works in math coordinates: the origin is the bottom-left cell and
// y grows upwards. Modules receive a boolean snapshot in array coordinates,
// where row 0 is the top row. The flip between the two happens only at the
// module boundary:
//
//	array_row = height - 1 - y
//	array_col = x
//
// Size.ToArray and Size.FromArray perform that flip. Snapshot projects a Grid
// into array order, and the replay package flips each recorded position back.
package grid
