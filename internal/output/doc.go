// Package output writes filtered subtitle scripts to their destination.
//
// Files are written as UTF-8 with a byte-order mark, which is what most
// subtitle editors and players expect for ASS scripts. Standard output
// receives the plain UTF-8 text.
package output
