// Package lua runs pathfinding modules written in Lua.
//
// A Lua module is a single script that defines a global function:
//
//	function run(grid, start, goal)
//	    -- grid[row][col] is true when the cell is passable, row 1 is the top
//	    -- start and goal are {x=, y=} in 0-based array coordinates
//	    host.output({ start, goal })
//	end
//
// The host installs a global "host" table with tile, line, arrow and output.
// Positions are {x=, y=} or {x, y}; colours are {r=, g=, b=}, {r, g, b} or a
// "#rrggbb" string.
//
// Scripts run in a restricted state: io, os, debug and package are not
// opened, dofile/loadfile/load are removed, print is routed to the host log,
// and every call is bounded by the invocation context.
package lua
