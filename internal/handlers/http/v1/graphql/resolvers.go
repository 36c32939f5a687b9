package graphql

import (
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/gfdmit/web-forum/posts-api/internal/apperr"
)

func parseID(raw any) (int64, error) {
	s, _ := raw.(string)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// public hides internal failures from GraphQL clients, which see every
// error message verbatim.
func public(err error) error {
	if err == nil || apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return fmt.Errorf("%s", apperr.MessageOf(err))
}

func getPostQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args["id"])
			if err != nil {
				return nil, err
			}
			post, err := gh.svc.GetPost(p.Context, id)
			if err != nil {
				return nil, public(err)
			}
			if post.Censored {
				return nil, nil
			}
			return post, nil
		},
	}
}

func getPostsQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(postType),
		Args: graphql.FieldConfigArgument{
			"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
			"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			limit, offset := p.Args["limit"].(int), p.Args["offset"].(int)
			if limit < 1 || limit > 500 || offset < 0 {
				return nil, fmt.Errorf("limit must be within 1..500 and offset must not be negative")
			}
			posts, err := gh.svc.ListPosts(p.Context, limit, offset)
			return posts, public(err)
		},
	}
}

func getCommentQuery(gh *gqlHandler, commentType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: commentType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args["id"])
			if err != nil {
				return nil, err
			}
			comment, err := gh.svc.GetComment(p.Context, id)
			if err != nil {
				return nil, public(err)
			}
			if comment.Censored {
				return nil, nil
			}
			return comment, nil
		},
	}
}

func getCommentsQuery(gh *gqlHandler, commentType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(commentType),
		Args: graphql.FieldConfigArgument{
			"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args["postId"])
			if err != nil {
				return nil, err
			}
			comments, err := gh.svc.PostComments(p.Context, id)
			return comments, public(err)
		},
	}
}
