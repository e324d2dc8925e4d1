package reconcile

import (
	"github.com/shunichi-ikebuchi/mm-ledger/pkg/mmbackup"
)

// Resolver answers "which account/category does entity E belong to" through
// the sync_link indirection. Every lookup is a single hop keyed by the owning
// entity uid, one map per link role.
type Resolver struct {
	accounts   map[string]mmbackup.Account
	categories map[string]mmbackup.Category
	links      map[mmbackup.LinkRole]map[string]string
}

// NewResolver indexes a snapshot. When several links exist for the same
// (entity, role) pair the first one wins.
func NewResolver(s *mmbackup.Snapshot) *Resolver {
	r := &Resolver{
		accounts:   make(map[string]mmbackup.Account, len(s.Accounts)),
		categories: make(map[string]mmbackup.Category, len(s.Categories)),
		links: map[mmbackup.LinkRole]map[string]string{
			mmbackup.RoleAccount:     {},
			mmbackup.RoleCategory:    {},
			mmbackup.RoleFromAccount: {},
			mmbackup.RoleToAccount:   {},
		},
	}

	for _, a := range s.Accounts {
		if _, ok := r.accounts[a.UID]; !ok {
			r.accounts[a.UID] = a
		}
	}
	for _, c := range s.Categories {
		if _, ok := r.categories[c.UID]; !ok {
			r.categories[c.UID] = c
		}
	}
	for _, l := range s.Links {
		byOwner, ok := r.links[l.OtherType]
		if !ok {
			continue
		}
		if _, exists := byOwner[l.EntityUID]; !exists {
			byOwner[l.EntityUID] = l.OtherUID
		}
	}

	return r
}

// AccountFor returns the account linked to ownerID with role Account.
func (r *Resolver) AccountFor(ownerID string) (mmbackup.Account, bool) {
	return r.account(mmbackup.RoleAccount, ownerID)
}

// CategoryFor returns the category linked to ownerID with role Category.
func (r *Resolver) CategoryFor(ownerID string) (mmbackup.Category, bool) {
	uid, ok := r.links[mmbackup.RoleCategory][ownerID]
	if !ok {
		return mmbackup.Category{}, false
	}
	c, ok := r.categories[uid]
	return c, ok
}

// TransferEndpoints returns both accounts of a transfer. ok is false unless
// both resolve.
func (r *Resolver) TransferEndpoints(ownerID string) (from, to mmbackup.Account, ok bool) {
	from, ok = r.account(mmbackup.RoleFromAccount, ownerID)
	if !ok {
		return mmbackup.Account{}, mmbackup.Account{}, false
	}
	to, ok = r.account(mmbackup.RoleToAccount, ownerID)
	if !ok {
		return mmbackup.Account{}, mmbackup.Account{}, false
	}
	return from, to, true
}

// account resolves a link to an existing, non-removed account.
func (r *Resolver) account(role mmbackup.LinkRole, ownerID string) (mmbackup.Account, bool) {
	uid, ok := r.links[role][ownerID]
	if !ok {
		return mmbackup.Account{}, false
	}
	a, ok := r.accounts[uid]
	if !ok || bool(a.IsRemoved) {
		return mmbackup.Account{}, false
	}
	return a, true
}
