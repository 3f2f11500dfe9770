package pyconit

import (
	"context"
	"fmt"
	"strings"

	"confdata/lib/restyutil"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type graphqlQueryObject struct {
	Name      string `json:"operationName"`
	Variables any    `json:"variables"`
	Query     string `json:"query"`
}

type graphqlErrorEntry struct {
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

type graphqlQueryResult[Data any] struct {
	Data   Data                `json:"data"`
	Errors []graphqlErrorEntry `json:"errors"`
}

// GraphQLError is returned when the response carries a non-empty `errors`
// array, no data from that response is used.
type GraphQLError struct {
	Operation string
	Messages  []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

func graphqlQuery[Input, Output any](
	ctx context.Context,
	client *resty.Client,
	endpoint,
	name,
	query string,
	variables Input,
) (Output, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("graphql:%s", name))
	defer span.End()

	obj := graphqlQueryObject{
		Name:      name,
		Query:     query,
		Variables: variables,
	}

	span.SetAttributes(attribute.KeyValue{
		Key:   "custom.name",
		Value: attribute.StringValue(name),
	})
	serialized, err := json.Marshal(variables)
	if err == nil {
		span.SetAttributes(attribute.KeyValue{
			Key:   "custom.variables",
			Value: attribute.StringValue(string(serialized)),
		})
	}

	var defaultOut Output

	body, err := json.Marshal(obj)
	if err != nil {
		span.SetStatus(codes.Error, "failed to serialize json query")
		return defaultOut, err
	}

	res, err := client.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch")
		return defaultOut, fmt.Errorf("graphql %s: %w", name, err)
	}
	if err := restyutil.CheckStatus(res); err != nil {
		span.SetStatus(codes.Error, "unexpected status")
		return defaultOut, err
	}

	var result graphqlQueryResult[Output]
	err = json.Unmarshal(res.Body(), &result)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse json response")
		return defaultOut, fmt.Errorf("graphql %s: decode response: %w", name, err)
	}

	if len(result.Errors) > 0 {
		gqlErr := &GraphQLError{Operation: name}
		for _, e := range result.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		span.SetStatus(codes.Error, gqlErr.Error())
		return defaultOut, gqlErr
	}

	return result.Data, nil
}
