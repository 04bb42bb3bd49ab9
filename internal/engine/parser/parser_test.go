package parser

import (
	"os"
	"path/filepath"
	"testing"

	"impactscan/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader(nil)
	require.NoError(t, err)
	return NewParser(loader)
}

func importBySource(t *testing.T, file *File, source string) ImportInfo {
	t.Helper()
	for _, imp := range file.Imports {
		if imp.Source == source {
			return imp
		}
	}
	t.Fatalf("import %q not found in %+v", source, file.Imports)
	return ImportInfo{}
}

func TestJavaScriptExtraction_Imports(t *testing.T) {
	p := newTestParser(t)

	code := `
import React, { useState as useLocal, useEffect } from "react";
import * as utils from './utils';
import './side-effect.css';
import def from "../lib/def.js";
const { a, b: renamed } = require('./cjs');
const whole = require("./whole");
const only = require('./member').only;
async function lazy() { return import('./lazy'); }
`
	file, err := p.ParseFile("/proj/src/app.js", []byte(code))
	require.NoError(t, err)
	assert.Equal(t, "javascript", file.Language)

	assert.Equal(t, []string{"default", "useState", "useEffect"}, importBySource(t, file, "react").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "./utils").Specifiers)
	assert.Empty(t, importBySource(t, file, "./side-effect.css").Specifiers)
	assert.NotNil(t, importBySource(t, file, "./side-effect.css").Specifiers)
	assert.Equal(t, []string{"default"}, importBySource(t, file, "../lib/def.js").Specifiers)
	assert.Equal(t, []string{"a", "b"}, importBySource(t, file, "./cjs").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "./whole").Specifiers)
	assert.Equal(t, []string{"only"}, importBySource(t, file, "./member").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "./lazy").Specifiers)

	// Declaration order is preserved.
	require.GreaterOrEqual(t, len(file.Imports), 2)
	assert.Equal(t, "react", file.Imports[0].Source)
	assert.Equal(t, "./utils", file.Imports[1].Source)
	assert.Equal(t, 2, file.Imports[0].Line)
}

func TestJavaScriptExtraction_Exports(t *testing.T) {
	p := newTestParser(t)

	code := `
export function foo() {}
export const bar = 1, { baz, inner: qux } = obj;
export class Widget {}
const hidden = 2;
export { hidden as visible };
export { helper } from './helpers';
export * as ns from './namespace';
export * from './everything';
export default function main() {}
`
	file, err := p.ParseFile("/proj/src/lib.mjs", []byte(code))
	require.NoError(t, err)

	assert.Equal(t, []string{"Widget", "bar", "baz", "default", "foo", "helper", "ns", "qux", "visible"}, file.ExportNames())
	assert.Equal(t, []string{"helper"}, importBySource(t, file, "./helpers").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "./namespace").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "./everything").Specifiers)
}

func TestTypeScriptExtraction(t *testing.T) {
	p := newTestParser(t)

	code := `
import type { Config } from './config';
import { load } from "./loader";
import fs = require("fs");
export interface Options { verbose: boolean }
export type Mode = "a" | "b";
export enum Level { Low, High }
export declare const VERSION: string;
export async function run(opts: Options): Promise<void> { await load(); }
namespace Internal { export const notTopLevel = 1; }
`
	file, err := p.ParseFile("/proj/src/run.ts", []byte(code))
	require.NoError(t, err)
	assert.Equal(t, "typescript", file.Language)

	assert.Equal(t, []string{"Config"}, importBySource(t, file, "./config").Specifiers)
	assert.Equal(t, []string{"load"}, importBySource(t, file, "./loader").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "fs").Specifiers)
	assert.Equal(t, []string{"Level", "Mode", "Options", "VERSION", "run"}, file.ExportNames())
}

func TestTSXExtraction(t *testing.T) {
	p := newTestParser(t)

	code := `
import { Button } from "./Button";
export const App = () => <Button label="hi" />;
`
	file, err := p.ParseFile("/proj/src/App.tsx", []byte(code))
	require.NoError(t, err)
	assert.Equal(t, "tsx", file.Language)
	assert.Equal(t, []string{"Button"}, importBySource(t, file, "./Button").Specifiers)
	assert.Equal(t, []string{"App"}, file.ExportNames())
}

func TestPythonExtraction(t *testing.T) {
	p := newTestParser(t)

	code := `
import os
import pkg.sub as sub
from .models import User, Group as G
from ..shared import *
from . import sibling

def public_fn():
    from .lazy import thing
    return thing

def _private():
    pass

@decorator
class Service:
    pass

CONSTANT = 1
_hidden = 2
`
	file, err := p.ParseFile("/proj/app/service.py", []byte(code))
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, importBySource(t, file, "os").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "pkg.sub").Specifiers)
	assert.Equal(t, []string{"User", "Group"}, importBySource(t, file, ".models").Specifiers)
	assert.Equal(t, []string{"*"}, importBySource(t, file, "..shared").Specifiers)
	assert.Equal(t, []string{"sibling"}, importBySource(t, file, ".").Specifiers)
	assert.Equal(t, []string{"thing"}, importBySource(t, file, ".lazy").Specifiers)
	assert.Equal(t, []string{"CONSTANT", "Service", "public_fn"}, file.ExportNames())
}

func TestPythonExtraction_DunderAll(t *testing.T) {
	p := newTestParser(t)

	code := `
__all__ = ["exposed", "reexported"]

def exposed():
    pass

def also_public():
    pass
`
	file, err := p.ParseFile("/proj/app/api.py", []byte(code))
	require.NoError(t, err)
	assert.Equal(t, []string{"exposed", "reexported"}, file.ExportNames())

	for _, exp := range file.Exports {
		if exp.Name == "exposed" {
			assert.Equal(t, 4, exp.StartLine)
		}
	}
}

func TestCSSExtraction(t *testing.T) {
	p := newTestParser(t)

	code := `
@import "base.css";
@import url('./theme/dark.css');
body { color: red; }
`
	file, err := p.ParseFile("/proj/styles/main.css", []byte(code))
	require.NoError(t, err)
	require.Len(t, file.Imports, 2)
	assert.Equal(t, "base.css", file.Imports[0].Source)
	assert.Equal(t, "./theme/dark.css", file.Imports[1].Source)
	assert.Empty(t, file.ExportNames())
}

func TestParseFile_Errors(t *testing.T) {
	p := newTestParser(t)

	_, err := p.ParseFile("/proj/logo.png", []byte{0x89, 0x50})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	_, err = p.ParseFile("/proj/broken.ts", []byte("export const = ;;; {"))
	assert.True(t, errors.IsCode(err, errors.CodeParseError))
}

func TestExtract_ReadsFileOrOverride(t *testing.T) {
	p := newTestParser(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.js")
	require.NoError(t, os.WriteFile(path, []byte("export const onDisk = 1;\n"), 0o644))

	file, err := p.Extract(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"onDisk"}, file.ExportNames())

	file, err = p.Extract(path, []byte("export const fromOverride = 1;\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"fromOverride"}, file.ExportNames())

	_, err = p.Extract(filepath.Join(dir, "missing.js"), nil)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestExportsTouching(t *testing.T) {
	file := &File{Exports: []Export{
		{Name: "a", StartLine: 1, EndLine: 3},
		{Name: "b", StartLine: 5, EndLine: 9},
		{Name: "c", StartLine: 11, EndLine: 11},
	}}

	assert.Equal(t, []string{"b"}, file.ExportsTouching([]LineRange{{Start: 4, End: 5}}))
	assert.Equal(t, []string{"a", "c"}, file.ExportsTouching([]LineRange{{Start: 2, End: 2}, {Start: 11, End: 12}}))
	assert.Empty(t, file.ExportsTouching([]LineRange{{Start: 10, End: 10}}))
}

func TestBuildLanguageRegistry(t *testing.T) {
	disabled := false
	registry, err := BuildLanguageRegistry(map[string]LanguageOverride{
		"css":        {Enabled: &disabled},
		"javascript": {Extensions: []string{"js", ".ES6"}},
	})
	require.NoError(t, err)
	assert.False(t, registry["css"].Enabled)
	assert.Equal(t, []string{".js", ".es6"}, registry["javascript"].Extensions)

	_, err = BuildLanguageRegistry(map[string]LanguageOverride{"cobol": {}})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	loader, err := NewGrammarLoader(registry)
	require.NoError(t, err)
	p := NewParser(loader)
	assert.False(t, p.IsSupportedPath("/x/site.css"))
	assert.True(t, p.IsSupportedPath("/x/legacy.es6"))
	assert.False(t, p.IsSupportedPath("/x/legacy.jsx"))
}

func TestNewGrammarLoader(t *testing.T) {
	registry := DefaultLanguageRegistry()
	registry["cobol"] = LanguageSpec{Name: "cobol", Enabled: true, Extensions: []string{".cbl"}}
	_, err := NewGrammarLoader(registry)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	registry["cobol"] = LanguageSpec{Name: "cobol", Enabled: false}
	loader, err := NewGrammarLoader(registry)
	require.NoError(t, err)
	assert.Nil(t, loader.Language("cobol"))
	assert.NotNil(t, loader.Language("tsx"))

	// The loader keeps its own copy.
	registry["python"] = LanguageSpec{Name: "python", Enabled: false}
	assert.True(t, loader.LanguageRegistry()["python"].Enabled)
}
