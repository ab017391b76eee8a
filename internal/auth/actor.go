// Package auth carries the identity of the caller into the services.
//
// Authentication happens upstream; this package only models what the
// services need to decide: who is acting and which permissions they hold.
package auth

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	PermMarkReturned = "can_mark_returned"
	PermEdit         = "can_edit"
)

type Actor struct {
	ID          uuid.UUID
	Username    string
	Permissions map[string]struct{}
}

func NewActor(id uuid.UUID, username string, perms ...string) Actor {
	a := Actor{
		ID:          id,
		Username:    username,
		Permissions: make(map[string]struct{}, len(perms)),
	}
	for _, p := range perms {
		// "catalog.can_edit" and "can_edit" are the same permission
		if i := strings.LastIndexByte(p, '.'); i >= 0 {
			p = p[i+1:]
		}
		if p = strings.TrimSpace(p); p != "" {
			a.Permissions[p] = struct{}{}
		}
	}
	return a
}

func (a Actor) Anonymous() bool {
	return a.ID == uuid.Nil
}

func (a Actor) Has(perm string) bool {
	_, ok := a.Permissions[perm]
	return ok
}

// HasAll reports whether every perm is granted.
func (a Actor) HasAll(perms ...string) bool {
	for _, p := range perms {
		if !a.Has(p) {
			return false
		}
	}
	return true
}

// IsStaff reports whether the actor may manage loans on behalf of others.
func (a Actor) IsStaff() bool {
	return a.Has(PermMarkReturned)
}

func (a Actor) PermissionList() []string {
	out := make([]string, 0, len(a.Permissions))
	for p := range a.Permissions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
