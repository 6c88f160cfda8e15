// Package logx is a thin structured logging layer over zerolog.
//
// Console output stays short and readable, the optional file sink is JSON lines.
// The zero Logger discards everything, so components can hold one unconditionally.
package logx
