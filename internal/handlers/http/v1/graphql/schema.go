package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
)

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(time.RFC3339)
			case *time.Time:
				if v == nil {
					return nil
				}
				return v.Format(time.RFC3339)
			default:
				return nil
			}
		},
	},
)

// Field resolution relies on the default resolver, which matches GraphQL
// field names against struct field names case-insensitively.
func (gh *gqlHandler) initSchema() error {
	postType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Post",
			Fields: graphql.Fields{
				"id":                    &graphql.Field{Type: graphql.ID},
				"userId":                &graphql.Field{Type: graphql.ID},
				"title":                 &graphql.Field{Type: graphql.String},
				"content":               &graphql.Field{Type: graphql.String},
				"status":                &graphql.Field{Type: graphql.String},
				"automaticReplyEnabled": &graphql.Field{Type: graphql.Boolean},
				"replyDelay":            &graphql.Field{Type: graphql.Int},
				"createdAt":             &graphql.Field{Type: DateTime},
				"updatedAt":             &graphql.Field{Type: DateTime},
			},
		},
	)

	commentType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Comment",
			Fields: graphql.Fields{
				"id":        &graphql.Field{Type: graphql.ID},
				"postId":    &graphql.Field{Type: graphql.ID},
				"userId":    &graphql.Field{Type: graphql.ID},
				"username":  &graphql.Field{Type: graphql.String},
				"content":   &graphql.Field{Type: graphql.String},
				"createdAt": &graphql.Field{Type: DateTime},
				"updatedAt": &graphql.Field{Type: DateTime},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"post":     getPostQuery(gh, postType),
				"posts":    getPostsQuery(gh, postType),
				"comment":  getCommentQuery(gh, commentType),
				"comments": getCommentsQuery(gh, commentType),
			},
		},
	)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return err
	}
	gh.schema = schema

	return nil
}
