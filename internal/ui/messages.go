package ui

import (
	"github.com/unkn0wn-root/grammarviz/internal/analysis"
	"github.com/unkn0wn-root/grammarviz/internal/session"
	"github.com/unkn0wn-root/grammarviz/internal/watcher"
)

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
	statusSuccess
)

type statusMsg struct {
	text  string
	level statusLevel
}

type stateMsg struct {
	state session.State
}

type grammarCommittedMsg struct {
	text string
}

type opKind int

const (
	opSubmit opKind = iota
	opStep
	opType
)

type outcomeMsg struct {
	op      opKind
	target  analysis.Target
	typ     analysis.Type
	outcome session.Outcome
}

type fileChangedMsg struct {
	event watcher.Event
}

type fileLoadedMsg struct {
	path string
	data []byte
	err  error
}
