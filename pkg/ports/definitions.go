package ports

import (
	"context"
	"io"
	"time"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
)

// OwnershipRepository walks the containment chain of an entity
type OwnershipRepository interface {
	// OwnerOf returns the id of the user at the top of the chain.
	// It returns domain.ErrNotFound when the entity does not exist or has no owner.
	OwnerOf(ctx context.Context, entity domain.Entity, id int64) (int64, error)
}

// OrderingRepository maintains sort_order inside one sibling group
type OrderingRepository interface {
	NextOrder(ctx context.Context, group domain.SiblingGroup, parentID int64) (int, error)
	Reorder(ctx context.Context, group domain.SiblingGroup, parentID int64, ids []int64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error // also removes the user's collections
	CountAdmins(ctx context.Context) (int64, error)
	FirstAdmin(ctx context.Context) (*domain.User, error)
	AdoptOrphanCollections(ctx context.Context, userID int64) (int64, error)
}

type CollectionRepository interface {
	CreateCollection(ctx context.Context, collection *domain.Collection) error
	GetCollection(ctx context.Context, id int64) (*domain.Collection, error)
	UpdateCollection(ctx context.Context, collection *domain.Collection) error
	DeleteCollection(ctx context.Context, id int64) error
	ListCollections(ctx context.Context, userID int64) ([]domain.Collection, error)
}

type SectionRepository interface {
	CreateSection(ctx context.Context, section *domain.Section) error
	GetSection(ctx context.Context, id int64) (*domain.Section, error)
	UpdateSection(ctx context.Context, section *domain.Section) error
	DeleteSection(ctx context.Context, id int64) error
	ListSections(ctx context.Context, collectionID int64) ([]domain.Section, error)
}

type LinkRepository interface {
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, id int64) (*domain.Link, error)
	UpdateLink(ctx context.Context, link *domain.Link) error
	DeleteLink(ctx context.Context, id int64) error
	ListLinks(ctx context.Context, sectionID int64) ([]domain.Link, error)
}

// Repository is the full storage surface, implemented by the sqlite adapter
type Repository interface {
	OwnershipRepository
	OrderingRepository
	UserRepository
	CollectionRepository
	SectionRepository
	LinkRepository
	Ping(ctx context.Context) error
	Close() error
}

// FaviconResolver decides the favicon reference stored with a link.
// A nil result means "no favicon"; it never fails.
type FaviconResolver interface {
	Resolve(ctx context.Context, siteURL, explicit string) *string
}

// FaviconCache remembers scrape results for private hosts.
type FaviconCache interface {
	// Get reports found=false when nothing is cached. A cached miss is found=true with ref "".
	Get(ctx context.Context, key string) (ref string, found bool, err error)
	Set(ctx context.Context, key, ref string, ttl time.Duration) error
}

// IconStore keeps uploaded icon bytes under a generated name.
type IconStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) error
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// TokenIssuer issues and verifies bearer identity tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, time.Time, error)
	Parse(token string) (int64, error)
}

// CollectionService defines business logic for collections and the dashboard
type CollectionService interface {
	ListCollections(ctx context.Context, userID int64) ([]domain.Collection, error)
	CreateCollection(ctx context.Context, userID int64, name string, icon *string) (*domain.Collection, error)
	UpdateCollection(ctx context.Context, userID, id int64, patch domain.CollectionPatch) (*domain.Collection, error)
	DeleteCollection(ctx context.Context, userID, id int64) error
	ReorderCollections(ctx context.Context, userID int64, ids []int64) error
	GetDashboard(ctx context.Context, userID, collectionID int64) (*domain.Dashboard, error)
}

type SectionService interface {
	ListSections(ctx context.Context, userID, collectionID int64) ([]domain.Section, error)
	CreateSection(ctx context.Context, userID, collectionID int64, name string) (*domain.Section, error)
	UpdateSection(ctx context.Context, userID, id int64, patch domain.SectionPatch) (*domain.Section, error)
	DeleteSection(ctx context.Context, userID, id int64) error
	ReorderSections(ctx context.Context, userID, collectionID int64, ids []int64) error
}

type LinkService interface {
	ListLinks(ctx context.Context, userID, sectionID int64) ([]domain.Link, error)
	CreateLink(ctx context.Context, userID, sectionID int64, title, url, favicon string) (*domain.Link, error)
	UpdateLink(ctx context.Context, userID, id int64, patch domain.LinkPatch) (*domain.Link, error)
	DeleteLink(ctx context.Context, userID, id int64) error
	ReorderLinks(ctx context.Context, userID, sectionID int64, ids []int64) error
}

// AuthService authenticates users and manages their own account
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	LoginExternal(ctx context.Context, username string) (string, time.Time, error)
	Verify(ctx context.Context, token string) (*domain.Identity, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error)
	UpdatePreferences(ctx context.Context, userID int64, accentColor string) (domain.Preferences, error)
}

// UserService is the admin-only user directory
type UserService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, username, password string, isAdmin bool) (*domain.User, error)
	UpdateUser(ctx context.Context, actorID, id int64, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
	Bootstrap(ctx context.Context, username, password string) error
}
