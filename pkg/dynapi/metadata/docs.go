package metadata

import (
	"fmt"

	"github.com/toyz/dynapi/pkg/dynapi/descriptor"
)

// OperationSummary formats the summary attached to documented methods
func OperationSummary(method string) string {
	return fmt.Sprintf("Method : %s", method)
}

// NewApi marks a type as documented under the given tags
func NewApi(tags ...string) Record {
	return Create(Api).Strings("tags", tags...).Build()
}

// NewApiIgnore hides a type from documentation
func NewApiIgnore() Record {
	return Create(ApiIgnore).Build()
}

// NewApiKeyAuth describes an api-key security definition
func NewApiKeyAuth(key, name, in string) Record {
	return Create(ApiKeyAuthDefinition).
		String("key", key).
		String("name", name).
		Enum("in", in).
		Build()
}

// Operation builds the ApiOperation record. An empty response defaults to
// the void sentinel.
func Operation(op descriptor.Operation) Record {
	response := op.Response
	if response == "" {
		response = VoidType
	}
	return Create(ApiOperation).
		String("value", op.Summary).
		String("notes", op.Notes).
		Type("response", response).
		Build()
}

// ImplicitParam builds one nested ApiImplicitParam record
func ImplicitParam(p descriptor.ImplicitParam) Record {
	return Create(ApiImplicitParam).
		String("name", p.Name).
		String("value", p.Value).
		String("defaultValue", p.DefaultValue).
		String("allowableValues", p.AllowableValues).
		Bool("required", p.Required).
		String("access", p.Access).
		Bool("allowMultiple", p.AllowMultiple).
		String("dataType", p.DataType).
		String("paramType", p.ParamType).
		String("example", p.Example).
		String("format", p.Format).
		Bool("readOnly", p.ReadOnly).
		Build()
}

// ImplicitParams wraps parameter docs in an ApiImplicitParams record
func ImplicitParams(params ...descriptor.ImplicitParam) Record {
	nested := make([]Record, len(params))
	for i, p := range params {
		nested[i] = ImplicitParam(p)
	}
	return Create(ApiImplicitParams).Records("value", nested...).Build()
}

// Response builds one nested ApiResponse record
func Response(r descriptor.Response) Record {
	response := r.Response
	if response == "" {
		response = VoidType
	}
	return Create(ApiResponse).
		Int("code", r.Code).
		String("message", r.Message).
		Type("response", response).
		String("reference", r.Reference).
		String("responseContainer", r.ResponseContainer).
		Build()
}

// Responses wraps response docs in an ApiResponses record
func Responses(responses ...descriptor.Response) Record {
	nested := make([]Record, len(responses))
	for i, r := range responses {
		nested[i] = Response(r)
	}
	return Create(ApiResponses).Records("value", nested...).Build()
}

// InvokeSuccess is the response entry attached to documented methods that
// return a value
func InvokeSuccess(returnType string) descriptor.Response {
	return descriptor.Response{Code: 0, Message: "Invoke Success", Response: returnType}
}

// MethodDocs returns the documentation records for a method: the operation
// summary, parameter docs when there are parameters, and the success
// response unless the method returns void
func MethodDocs(name, notes, returnType string, params []descriptor.Parameter) []Record {
	records := []Record{Operation(descriptor.Operation{
		Summary:  OperationSummary(name),
		Notes:    notes,
		Response: returnType,
	})}

	if len(params) > 0 {
		docs := make([]descriptor.ImplicitParam, len(params))
		for i, p := range params {
			docs[i] = descriptor.DocParam(p)
		}
		records = append(records, ImplicitParams(docs...))
	}

	if returnType != "" && returnType != VoidType {
		records = append(records, Responses(InvokeSuccess(returnType)))
	}
	return records
}
