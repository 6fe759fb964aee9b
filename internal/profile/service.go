package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backend-devconnect/internal/db"
	"backend-devconnect/internal/shared/ownership"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotProfileOwner = errors.New("user not authorized")
	ErrEntryNotFound   = errors.New("entry not found")
)

const summaryCacheTTL = 10 * time.Minute

type Service struct {
	db    db.Querier
	redis *redis.Client
}

func NewService(db db.Querier, redisClient *redis.Client) *Service {
	return &Service{db: db, redis: redisClient}
}

// Upsert creates the caller's profile or updates it in place.
func (s *Service) Upsert(ctx context.Context, userID string, input Profile) (Profile, error) {
	input.UserID = userID

	row := s.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, status, company, website, location, bio, github_username, skills,
			social_youtube, social_twitter, social_facebook, social_linkedin, social_instagram)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (user_id) DO UPDATE SET
			status=$2, company=$3, website=$4, location=$5, bio=$6, github_username=$7, skills=$8,
			social_youtube=$9, social_twitter=$10, social_facebook=$11, social_linkedin=$12,
			social_instagram=$13, updated_at=now()
		RETURNING created_at, updated_at
	`, input.UserID, input.Status, input.Company, input.Website, input.Location, input.Bio,
		input.GithubUser, input.Skills,
		input.Social.Youtube, input.Social.Twitter, input.Social.Facebook,
		input.Social.Linkedin, input.Social.Instagram)
	if err := row.Scan(&input.CreatedAt, &input.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return s.GetByUser(ctx, userID)
}

// GetByUser returns the profile plus its owner summary. The owner read
// is a second explicit fetch (cached in redis), not a join.
func (s *Service) GetByUser(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, status, company, website, location, bio, github_username, skills,
			social_youtube, social_twitter, social_facebook, social_linkedin, social_instagram,
			created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}

	if err := s.hydrateEntries(ctx, []*Profile{&p}); err != nil {
		return Profile{}, err
	}
	owner, err := s.userSummary(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p.Owner = owner
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, status, company, website, location, bio, github_username, skills,
			social_youtube, social_twitter, social_facebook, social_linkedin, social_instagram,
			created_at, updated_at
		FROM profiles
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	refs := make([]*Profile, len(profiles))
	for i := range profiles {
		refs[i] = &profiles[i]
	}
	if err := s.hydrateEntries(ctx, refs); err != nil {
		return nil, err
	}
	for i := range profiles {
		owner, err := s.userSummary(ctx, profiles[i].UserID)
		if err != nil {
			return nil, err
		}
		profiles[i].Owner = owner
	}
	return profiles, nil
}

// Delete removes the caller's profile, posts, and user row.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM posts WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return err
	}
	if s.redis != nil {
		_ = s.redis.Del(ctx, summaryCacheKey(userID)).Err()
	}
	return nil
}

func (s *Service) AddExperience(ctx context.Context, ownerID, callerID string, e Experience) (Profile, error) {
	if !ownership.Owns(ownerID, callerID) {
		return Profile{}, ErrNotProfileOwner
	}

	e.ID = uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO profile_experience (id, user_id, title, company, location, from_date, to_date, current, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.ID, ownerID, e.Title, e.Company, e.Location, e.From, e.To, e.Current, e.Description)
	if err != nil {
		return Profile{}, err
	}
	return s.GetByUser(ctx, ownerID)
}

// RemoveExperience deletes exactly the entry with entryID. The delete
// predicate is the entry id plus the owning user, never an index
// recomputed from another field.
func (s *Service) RemoveExperience(ctx context.Context, ownerID, callerID, entryID string) (Profile, error) {
	if !ownership.Owns(ownerID, callerID) {
		return Profile{}, ErrNotProfileOwner
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM profile_experience WHERE id = $1 AND user_id = $2
	`, entryID, ownerID)
	if err != nil {
		return Profile{}, err
	}
	if tag.RowsAffected() == 0 {
		return Profile{}, ErrEntryNotFound
	}
	return s.GetByUser(ctx, ownerID)
}

func (s *Service) AddEducation(ctx context.Context, ownerID, callerID string, e Education) (Profile, error) {
	if !ownership.Owns(ownerID, callerID) {
		return Profile{}, ErrNotProfileOwner
	}

	e.ID = uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO profile_education (id, user_id, school, degree, field_of_study, from_date, to_date, current, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.ID, ownerID, e.School, e.Degree, e.FieldOfStudy, e.From, e.To, e.Current, e.Description)
	if err != nil {
		return Profile{}, err
	}
	return s.GetByUser(ctx, ownerID)
}

func (s *Service) RemoveEducation(ctx context.Context, ownerID, callerID, entryID string) (Profile, error) {
	if !ownership.Owns(ownerID, callerID) {
		return Profile{}, ErrNotProfileOwner
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM profile_education WHERE id = $1 AND user_id = $2
	`, entryID, ownerID)
	if err != nil {
		return Profile{}, err
	}
	if tag.RowsAffected() == 0 {
		return Profile{}, ErrEntryNotFound
	}
	return s.GetByUser(ctx, ownerID)
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Status, &p.Company, &p.Website, &p.Location, &p.Bio,
		&p.GithubUser, &p.Skills,
		&p.Social.Youtube, &p.Social.Twitter, &p.Social.Facebook,
		&p.Social.Linkedin, &p.Social.Instagram,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	p.Experience = []Experience{}
	p.Education = []Education{}
	return p, nil
}

func (s *Service) hydrateEntries(ctx context.Context, profiles []*Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]string, len(profiles))
	byUser := make(map[string]*Profile, len(profiles))
	for i, p := range profiles {
		ids[i] = p.UserID
		byUser[p.UserID] = p
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, title, company, location, from_date, to_date, current, description
		FROM profile_experience WHERE user_id = ANY($1)
		ORDER BY from_date DESC
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		var e Experience
		if err := rows.Scan(&e.ID, &userID, &e.Title, &e.Company, &e.Location, &e.From, &e.To, &e.Current, &e.Description); err != nil {
			return err
		}
		if p := byUser[userID]; p != nil {
			p.Experience = append(p.Experience, e)
		}
	}

	eduRows, err := s.db.Query(ctx, `
		SELECT id, user_id, school, degree, field_of_study, from_date, to_date, current, description
		FROM profile_education WHERE user_id = ANY($1)
		ORDER BY from_date DESC
	`, ids)
	if err != nil {
		return err
	}
	defer eduRows.Close()
	for eduRows.Next() {
		var userID string
		var e Education
		if err := eduRows.Scan(&e.ID, &userID, &e.School, &e.Degree, &e.FieldOfStudy, &e.From, &e.To, &e.Current, &e.Description); err != nil {
			return err
		}
		if p := byUser[userID]; p != nil {
			p.Education = append(p.Education, e)
		}
	}
	return nil
}

// userSummary serves owner name/avatar from redis when warm, falling
// back to the users table. A nil redis client just skips the cache.
func (s *Service) userSummary(ctx context.Context, userID string) (*UserSummary, error) {
	key := summaryCacheKey(userID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var summary UserSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	var summary UserSummary
	row := s.db.QueryRow(ctx, `SELECT id, name, avatar_url FROM users WHERE id = $1`, userID)
	if err := row.Scan(&summary.ID, &summary.Name, &summary.AvatarURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(summary); err == nil {
			_ = s.redis.Set(ctx, key, payload, summaryCacheTTL).Err()
		}
	}
	return &summary, nil
}

func summaryCacheKey(userID string) string {
	return "user:summary:" + userID
}
