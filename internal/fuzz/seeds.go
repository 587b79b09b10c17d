package fuzztests

import (
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
	maxFuzzInput = 1 << 16
)

// sourceSeeds cover both grammars, error recovery and the edge cases the
// engine treats specially (empty input, shebangs, BOMs, CRLF).
var sourceSeeds = []string{
	"",
	"const x = 1;",
	"#!/usr/bin/env node\nconsole.log(1)\n",
	"\ufefflet a = 'bom';",
	"let a = 1;\r\nlet b = 2;\r\n",
	"import { a } from './a.js';\nexport default function f() { return a ?? 0; }\n",
	"class A { #x = 1; static { this.y = 2; } get x() { return this.#x; } }",
	"async function* g() { for await (const v of s) yield v; }",
	"const el = <div className=\"x\">{items.map(i => <i key={i} />)}</div>;",
	"interface P { a: number; b?: string }\nconst p: P = { a: 1 };",
	"@dec class C { @field x = 1 }",
	"enum Color { Red, Green }\ntype T<K extends keyof any> = Record<K, T<K>>;",
	"/* block */ // line\nfoo(/* inline */ 1)",
	"const = ;",
	"function (",
	"{{{{{{{{{{",
	"`unterminated ${",
	"let x = 1 +",
	"a?.b?.[c]?.(d)",
	"x ||= y &&= z ??= w",
}

// configSeeds are raw configuration buffers, valid and invalid.
var configSeeds = []string{
	"",
	"{}",
	`{"syntax":"typescript","tsx":true}`,
	`{"syntax":"ecmascript","jsx":true,"target":"es5","isModule":false}`,
	`{"decorators":true,"comments":true,"target":"es2022"}`,
	`{"syntax":"coffeescript"}`,
	`{"syntax":"ecmascript","tsx":true}`,
	`{"target":"es1999"}`,
	`{"unknown":1}`,
	"{",
	"\x80",
	"\x81\xa6syntax\xaatypescript",
}

func addSourceSeeds(f *testing.F) {
	for _, s := range sourceSeeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func addConfigSeeds(f *testing.F) {
	for _, s := range configSeeds {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return src
	}
	return src[:maxSeedBytes]
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
