package metadata

// Route mapping kinds
const (
	RequestMapping Kind = "RequestMapping"
	GetMapping     Kind = "GetMapping"
	PostMapping    Kind = "PostMapping"
	PutMapping     Kind = "PutMapping"
	DeleteMapping  Kind = "DeleteMapping"
	PatchMapping   Kind = "PatchMapping"
)

// Stereotype and wiring kinds
const (
	Controller     Kind = "Controller"
	RestController Kind = "RestController"
	ResponseBody   Kind = "ResponseBody"
	WebBound       Kind = "WebBound"
	Autowired      Kind = "Autowired"
	Qualifier      Kind = "Qualifier"
	Configuration  Kind = "Configuration"
	Bean           Kind = "Bean"
	Lazy           Kind = "Lazy"
	Scope          Kind = "Scope"
)

// Parameter source kinds
const (
	CookieValue      Kind = "CookieValue"
	MatrixVariable   Kind = "MatrixVariable"
	PathVariable     Kind = "PathVariable"
	RequestAttribute Kind = "RequestAttribute"
	RequestBody      Kind = "RequestBody"
	RequestHeader    Kind = "RequestHeader"
	RequestParam     Kind = "RequestParam"
	RequestPart      Kind = "RequestPart"
	ParamName        Kind = "ParamName"
)

// Documentation kinds
const (
	Api                  Kind = "Api"
	ApiIgnore            Kind = "ApiIgnore"
	ApiOperation         Kind = "ApiOperation"
	ApiImplicitParam     Kind = "ApiImplicitParam"
	ApiImplicitParams    Kind = "ApiImplicitParams"
	ApiResponse          Kind = "ApiResponse"
	ApiResponses         Kind = "ApiResponses"
	ApiKeyAuthDefinition Kind = "ApiKeyAuthDefinition"
)

// VoidType is the type reference used when a documented method returns nothing
const VoidType = "void"

// MappingKinds lists every kind that carries a route mapping
var MappingKinds = []Kind{RequestMapping, GetMapping, PostMapping, PutMapping, DeleteMapping, PatchMapping}

// IsMapping reports whether k is a route mapping kind
func IsMapping(k Kind) bool {
	for _, m := range MappingKinds {
		if m == k {
			return true
		}
	}
	return false
}
