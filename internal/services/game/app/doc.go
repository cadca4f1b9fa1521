// Package app wires the match engine to storage and to a text console.
//
// Session owns the save/load path and maps storage failures onto the domain
// error taxonomy. Console is the interactive driver: it reads menu choices
// and answers line by line and renders engine results through the message
// catalog for the configured locale.
package app
