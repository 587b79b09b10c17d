// Package fuzztests houses Go fuzz harnesses for the parse pipeline: the
// configuration decoder and full bridge tasks. They guard against panics,
// hangs and malformed trees on arbitrary input.
package fuzztests
