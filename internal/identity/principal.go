// Package identity resolves inbound credentials to a principal. It decides
// who the caller is, never what the caller may do.
package identity

import (
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Kind string

const (
	KindAnonymous Kind = "anonymous"
	KindAdmin     Kind = "admin"
	KindCustomer  Kind = "customer"
)

// Principal is the resolved caller identity, independent of which credential
// scheme authenticated it.
type Principal struct {
	Kind       Kind
	CustomerID snowflake.ID
	AccountID  snowflake.ID
}

func Anonymous() Principal {
	return Principal{Kind: KindAnonymous}
}

func Admin(accountID snowflake.ID) Principal {
	return Principal{Kind: KindAdmin, AccountID: accountID}
}

func Customer(accountID, customerID snowflake.ID) Principal {
	return Principal{Kind: KindCustomer, AccountID: accountID, CustomerID: customerID}
}

func (p Principal) IsAdmin() bool {
	return p.Kind == KindAdmin
}

func (p Principal) IsCustomer() bool {
	return p.Kind == KindCustomer
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrKeyNotFound     = errors.New("api_key_not_found")
)
