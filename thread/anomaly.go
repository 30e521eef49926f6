package thread

import (
	"errors"
	"fmt"
)

var (
	ErrRootNotFound = errors.New("root post not found")
	ErrNoPosts      = errors.New("no posts ingested")

	ErrMalformedRecord = errors.New("malformed record")
	ErrOrphanLink      = errors.New("orphan link")
	ErrCyclicLink      = errors.New("cyclic link")
)

type AnomalyKind int

const (
	MalformedRecord AnomalyKind = iota + 1
	OrphanLink
	CyclicLink
)

func (k AnomalyKind) String() string {
	switch k {
	case MalformedRecord:
		return "MalformedRecord"
	case OrphanLink:
		return "OrphanLink"
	case CyclicLink:
		return "CyclicLink"
	}
	return fmt.Sprintf("AnomalyKind(%d)", int(k))
}

func (k AnomalyKind) sentinel() error {
	switch k {
	case MalformedRecord:
		return ErrMalformedRecord
	case OrphanLink:
		return ErrOrphanLink
	case CyclicLink:
		return ErrCyclicLink
	}
	return nil
}

// Anomaly is a non-fatal problem found while building a tree.
type Anomaly struct {
	Kind     AnomalyKind
	PostID   string
	ParentID string
	Detail   string
}

func (a *Anomaly) Error() string {
	s := fmt.Sprintf("%s: post %q", a.Kind, a.PostID)
	if a.ParentID != "" {
		s += fmt.Sprintf(" (parent %q)", a.ParentID)
	}
	if a.Detail != "" {
		s += ": " + a.Detail
	}
	return s
}

func (a *Anomaly) Is(target error) bool {
	return target != nil && target == a.Kind.sentinel()
}

// CountByKind returns how many anomalies of each kind are in the list.
func CountByKind(anomalies []Anomaly) map[AnomalyKind]int {
	r := map[AnomalyKind]int{}
	for _, a := range anomalies {
		r[a.Kind]++
	}
	return r
}
