package service

import (
	"context"
	"strings"

	"workstation/internal/models"
	"workstation/internal/repository"
	"workstation/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const maxProfileTitleLength = 200

// ProfileService reads and edits user profiles.
type ProfileService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the fields to change. Nil fields are left as
// they are; a non-nil Skills or Interests replaces the whole set.
type UpdateProfileInput struct {
	FirstName    *string   `json:"first_name"`
	LastName     *string   `json:"last_name"`
	UserType     *string   `json:"user_type"`
	Bio          *string   `json:"bio"`
	Title        *string   `json:"title"`
	ProfileImage *string   `json:"profile_image"`
	Location     *string   `json:"location"`
	Website      *string   `json:"website"`
	LinkedIn     *string   `json:"linkedin"`
	GitHub       *string   `json:"github"`
	Skills       *[]string `json:"skills"`
	Interests    *[]string `json:"interests"`
}

// CreateUserInput is used by the seed and admin tools.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	UserType  models.UserType
	Bio       string
	Title     string
	Location  string
	IsAdmin   bool
	Skills    []string
	Interests []string
}

// NewProfileService returns a new ProfileService.
func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// GetProfile returns the user with skills and interests loaded.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

// GetProfileByUsername resolves a public profile.
func (s *ProfileService) GetProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetProfile(ctx, u.ID)
}

// UpdateProfile applies in and stores the recomputed completeness in the
// same transaction.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.UserType != nil {
		t := models.UserType(strings.TrimSpace(*in.UserType))
		if !t.Valid() {
			return nil, models.NewValidationError("Invalid user type")
		}
		user.UserType = t
	}
	if in.Title != nil && len([]rune(strings.TrimSpace(*in.Title))) > maxProfileTitleLength {
		return nil, models.NewValidationError("Title is too long")
	}

	setText(&user.FirstName, in.FirstName)
	setText(&user.LastName, in.LastName)
	setText(&user.Bio, in.Bio)
	setText(&user.Title, in.Title)
	setText(&user.ProfileImage, in.ProfileImage)
	setText(&user.Location, in.Location)
	setText(&user.Website, in.Website)
	setText(&user.LinkedIn, in.LinkedIn)
	setText(&user.GitHub, in.GitHub)

	if err := s.userRepo.SaveProfile(ctx, user, in.Skills, in.Interests); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser hashes the password and stores a new account with its
// completeness already computed.
func (s *ProfileService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" {
		return nil, models.NewValidationError("Username and email are required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Password == "" {
		return nil, models.NewValidationError("Password is required")
	}
	if in.UserType == "" {
		in.UserType = models.UserTypeEnthusiast
	}
	if !in.UserType.Valid() {
		return nil, models.NewValidationError("Invalid user type")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		UserType:  in.UserType,
		Bio:       validation.SanitizeText(in.Bio),
		Title:     strings.TrimSpace(in.Title),
		Location:  strings.TrimSpace(in.Location),
		IsAdmin:   in.IsAdmin,
	}
	if err := s.userRepo.Create(ctx, user, in.Skills, in.Interests); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

func setText(dst *string, v *string) {
	if v == nil {
		return
	}
	*dst = validation.SanitizeText(*v)
}

// SetAdmin grants or revokes admin rights by username. changed is false when
// the user already had the requested state.
func (s *ProfileService) SetAdmin(ctx context.Context, username string, isAdmin bool) (_ *models.User, changed bool, err error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, false, err
	}
	if user.IsAdmin == isAdmin {
		return user, false, nil
	}
	if err := s.userRepo.SetAdmin(ctx, user.ID, isAdmin); err != nil {
		return nil, false, err
	}
	user.IsAdmin = isAdmin
	return user, true, nil
}

// ListAdmins returns every admin account.
func (s *ProfileService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListAdmins(ctx)
}
