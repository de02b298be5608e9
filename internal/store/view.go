package store

import "github.com/sakif/applytrack/internal/model"

// View is the single UI state of the client. Exactly one variant is active,
// so at most one modal is ever open and loading and error display cannot
// overlap.
//
//	Idle        nothing open
//	Adding      add modal with its draft
//	Editing     edit modal for ID with its draft
//	Deleting    delete confirmation for Record
//	Loading     a request is in flight
//	ErrorShown  the last request failed with Message
type View interface {
	isView()
}

// Draft is the editable content of the add and edit modals.
type Draft struct {
	Title    string
	Comments string
	Rejected bool
}

type Idle struct{}

type Adding struct {
	Draft Draft
}

type Editing struct {
	ID    string
	Draft Draft
}

type Deleting struct {
	Record model.Company
}

type Loading struct{}

type ErrorShown struct {
	Message string
}

func (Idle) isView()       {}
func (Adding) isView()     {}
func (Editing) isView()    {}
func (Deleting) isView()   {}
func (Loading) isView()    {}
func (ErrorShown) isView() {}
