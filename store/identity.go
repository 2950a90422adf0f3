package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"site_cms/post"
)

// ProfileIdentity signs in as a fixed author profile. An empty user ID
// means nobody is signed in.
type ProfileIdentity struct {
	db     *gorm.DB
	userID string
}

func NewProfileIdentity(db *gorm.DB, userID string) *ProfileIdentity {
	return &ProfileIdentity{db: db, userID: userID}
}

func (p *ProfileIdentity) CurrentUser(ctx context.Context) (*post.User, error) {
	if p.userID == "" {
		return nil, nil
	}
	var row profileRow
	err := p.db.WithContext(ctx).Where("id = ?", p.userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(post.ErrUnauthenticated, "no profile %q", p.userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load profile")
	}
	return &post.User{ID: row.ID, Username: row.Username}, nil
}
