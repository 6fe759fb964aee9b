package post

import (
	"context"
	"errors"

	"backend-devconnect/internal/db"
	"backend-devconnect/internal/shared/ownership"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostOwner    = errors.New("user not authorized")
	ErrAlreadyLiked    = errors.New("post already liked")
	ErrNotLiked        = errors.New("post not liked")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("user not authorized")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Create snapshots the author's name and avatar onto the post so feeds
// render without joining users.
func (s *Service) Create(ctx context.Context, userID, text string) (Post, error) {
	var name, avatar string
	row := s.db.QueryRow(ctx, `
		SELECT name, avatar_url FROM users WHERE id = $1
	`, userID)
	if err := row.Scan(&name, &avatar); err != nil {
		return Post{}, err
	}

	p := Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		Name:      name,
		AvatarURL: avatar,
		Likes:     []Like{},
		Comments:  []Comment{},
	}

	row = s.db.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, text, name, avatar_url)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, p.ID, p.UserID, p.Text, p.Name, p.AvatarURL)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, text, name, avatar_url, created_at
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	var ids []string
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Likes = []Like{}
		p.Comments = []Comment{}
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}

	likes, err := s.loadLikes(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if l := likes[posts[i].ID]; l != nil {
			posts[i].Likes = l
		}
		if c := comments[posts[i].ID]; c != nil {
			posts[i].Comments = c
		}
	}
	return posts, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, text, name, avatar_url, created_at
		FROM posts WHERE id = $1
	`, id)

	var p Post
	if err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.AvatarURL, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, err
	}

	likes, err := s.loadLikes(ctx, []string{p.ID})
	if err != nil {
		return Post{}, err
	}
	comments, err := s.loadComments(ctx, []string{p.ID})
	if err != nil {
		return Post{}, err
	}
	p.Likes = likes[p.ID]
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	p.Comments = comments[p.ID]
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	return p, nil
}

// Delete removes a post and its likes and comments. Only the author may
// delete; anyone else gets ErrNotPostOwner.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	authorID, err := s.postAuthor(ctx, id)
	if err != nil {
		return err
	}
	if !ownership.Owns(authorID, userID) {
		return ErrNotPostOwner
	}

	// post_likes and post_comments cascade on the posts FK
	_, err = s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

// Like records that userID likes the post. The conditional insert is
// the atomic not-already-liked check: two concurrent likes cannot both
// insert a row for the same (post, user) pair.
func (s *Service) Like(ctx context.Context, postID, userID string) ([]Like, error) {
	if _, err := s.postAuthor(ctx, postID); err != nil {
		return nil, err
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, postID, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAlreadyLiked
	}
	return s.likesOf(ctx, postID)
}

// Unlike removes the caller's like by user id equality, never by
// position in the list.
func (s *Service) Unlike(ctx context.Context, postID, userID string) ([]Like, error) {
	if _, err := s.postAuthor(ctx, postID); err != nil {
		return nil, err
	}

	tag, err := s.db.Exec(ctx, `
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotLiked
	}
	return s.likesOf(ctx, postID)
}

func (s *Service) AddComment(ctx context.Context, postID, userID, text string) ([]Comment, error) {
	if _, err := s.postAuthor(ctx, postID); err != nil {
		return nil, err
	}

	var name, avatar string
	row := s.db.QueryRow(ctx, `
		SELECT name, avatar_url FROM users WHERE id = $1
	`, userID)
	if err := row.Scan(&name, &avatar); err != nil {
		return nil, err
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO post_comments (id, post_id, user_id, text, name, avatar_url)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, uuid.NewString(), postID, userID, text, name, avatar)
	if err != nil {
		return nil, err
	}
	return s.commentsOf(ctx, postID)
}

// RemoveComment deletes exactly the comment with commentID, and only
// for its author. The single conditional delete carries both checks;
// a zero-row result is classified afterwards.
func (s *Service) RemoveComment(ctx context.Context, postID, commentID, userID string) ([]Comment, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM post_comments WHERE id = $1 AND post_id = $2 AND user_id = $3
	`, commentID, postID, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		var authorID string
		row := s.db.QueryRow(ctx, `
			SELECT user_id FROM post_comments WHERE id = $1 AND post_id = $2
		`, commentID, postID)
		if err := row.Scan(&authorID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if !ownership.Owns(authorID, userID) {
			return nil, ErrNotCommentOwner
		}
		return nil, ErrCommentNotFound
	}
	return s.commentsOf(ctx, postID)
}

func (s *Service) postAuthor(ctx context.Context, postID string) (string, error) {
	var authorID string
	row := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if err := row.Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPostNotFound
		}
		return "", err
	}
	return authorID, nil
}

func (s *Service) likesOf(ctx context.Context, postID string) ([]Like, error) {
	likes, err := s.loadLikes(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	if likes[postID] == nil {
		return []Like{}, nil
	}
	return likes[postID], nil
}

func (s *Service) commentsOf(ctx context.Context, postID string) ([]Comment, error) {
	comments, err := s.loadComments(ctx, []string{postID})
	if err != nil {
		return nil, err
	}
	if comments[postID] == nil {
		return []Comment{}, nil
	}
	return comments[postID], nil
}

func (s *Service) loadLikes(ctx context.Context, postIDs []string) (map[string][]Like, error) {
	if len(postIDs) == 0 {
		return map[string][]Like{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT post_id, user_id, created_at
		FROM post_likes WHERE post_id = ANY($1)
		ORDER BY created_at DESC
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := map[string][]Like{}
	for rows.Next() {
		var postID string
		var l Like
		if err := rows.Scan(&postID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, err
		}
		likes[postID] = append(likes[postID], l)
	}
	return likes, nil
}

func (s *Service) loadComments(ctx context.Context, postIDs []string) (map[string][]Comment, error) {
	if len(postIDs) == 0 {
		return map[string][]Comment{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, user_id, text, name, avatar_url, created_at
		FROM post_comments WHERE post_id = ANY($1)
		ORDER BY created_at DESC
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := map[string][]Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.Name, &c.AvatarURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments[c.PostID] = append(comments[c.PostID], c)
	}
	return comments, nil
}
