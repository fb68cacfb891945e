// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated principal's identity.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access caller information without depending on Gin.
type Identity interface {
	// SubjectID returns the authenticated principal's ID.
	SubjectID() uuid.UUID
	// Email returns the principal's email address.
	Email() string
	// IsClient reports whether the principal is a client (as opposed to
	// a field agent).
	IsClient() bool
	// IsAuthenticated returns true if the principal is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	subjectID     uuid.UUID
	email         string
	isClient      bool
	authenticated bool
}

func (i *identity) SubjectID() uuid.UUID {
	return i.subjectID
}

func (i *identity) Email() string {
	return i.email
}

func (i *identity) IsClient() bool {
	return i.isClient
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if principal info is not present.
func GetIdentity(c *gin.Context) Identity {
	subjectID, subjectOK := c.Get(ContextSubjectIDKey)
	if !subjectOK {
		return &identity{authenticated: false}
	}

	sid, ok := subjectID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	email, _ := c.Get(ContextEmailKey)
	isClient, _ := c.Get(ContextIsClientKey)

	emailText, _ := email.(string)
	isClientFlag, _ := isClient.(bool)

	return &identity{
		subjectID:     sid,
		email:         emailText,
		isClient:      isClientFlag,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the principal is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
