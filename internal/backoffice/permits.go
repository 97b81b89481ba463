package backoffice

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// PermitStatus is the disposition of a filed permit.
type PermitStatus string

const (
	PermitFiled    PermitStatus = "filed"
	PermitApproved PermitStatus = "approved"
	PermitRejected PermitStatus = "rejected"
)

// Permit is one filed application.
type Permit struct {
	Number  string
	Kind    string
	Status  PermitStatus
	FiledAt time.Time
}

// PermitOffice issues permits for recognized classes of work. Filing is
// synchronous: the office approves or rejects on the spot.
type PermitOffice struct {
	jurisdiction string

	mu      sync.Mutex
	seq     int
	permits map[string]*Permit
	known   map[string]bool
}

// NewPermitOffice creates a permit office for one jurisdiction.
func NewPermitOffice(jurisdiction string) *PermitOffice {
	known := map[string]bool{
		"building":   true,
		"electrical": true,
		"plumbing":   true,
		"mechanical": true,
		"demolition": true,
	}
	return &PermitOffice{
		jurisdiction: jurisdiction,
		permits:      make(map[string]*Permit),
		known:        known,
	}
}

// File submits a permit application. Recognized kinds are approved
// immediately; anything else is recorded as rejected and returned with an
// error.
func (o *PermitOffice) File(kind string) (Permit, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	permit := &Permit{
		Number:  fmt.Sprintf("PRM-%04d", o.seq),
		Kind:    kind,
		Status:  PermitApproved,
		FiledAt: time.Now(),
	}

	var err error
	if !o.known[kind] {
		permit.Status = PermitRejected
		err = fmt.Errorf("jurisdiction %s rejected %q permit: unknown work class", o.jurisdiction, kind)
	}

	o.permits[permit.Number] = permit
	return *permit, err
}

// Status looks up a filed permit by number.
func (o *PermitOffice) Status(number string) (Permit, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	permit, exists := o.permits[number]
	if !exists {
		return Permit{}, fmt.Errorf("permit %q not on file with %s", number, o.jurisdiction)
	}
	return *permit, nil
}

// Issued returns every permit on file, sorted by number.
func (o *PermitOffice) Issued() []Permit {
	o.mu.Lock()
	defer o.mu.Unlock()

	issued := make([]Permit, 0, len(o.permits))
	for _, p := range o.permits {
		issued = append(issued, *p)
	}
	sort.Slice(issued, func(i, j int) bool { return issued[i].Number < issued[j].Number })
	return issued
}
