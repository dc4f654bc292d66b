package test

import (
	"fmt"
	"math/rand"
	"strings"
)

const validTokens = "func;main;Factorial;a;paramA;(;);{;};,;int;float;bool;true;false;return;if;else;+;-;*;/;!;:=;&&;||;<;>;<=;>=;==;!=;123;321;1.5;2f;0.25F;\n"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}

// GetRandomProgram builds a valid program of size statements that adds up
// a chain of variables through a function call.
func GetRandomProgram(size int) string {
	var prog strings.Builder

	prog.WriteString("func Add(int a, int b) { return a + b; }\n")
	prog.WriteString("v0 := 0;\n")

	for i := 1; i < size; i++ {
		fmt.Fprintf(&prog, "v%d := Add(v%d, %d);\n", i, i-1, rand.Intn(100))
	}

	return prog.String()
}
