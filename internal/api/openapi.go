package api

import (
	"github.com/minsuklee/fundscope/internal/config"
	"github.com/minsuklee/fundscope/pkg/openapi"
)

// buildSpec describes the project endpoints as an OpenAPI 3.1 document.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.Schemas["Project"] = projectSchema()
	spec.Components.Schemas["Report"] = reportSchema()
	spec.Components.Schemas["ProjectPage"] = pageSchema("Project")
	spec.Components.Schemas["ProjectSearch"] = searchSchema()

	spec.Paths["/projects"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List projects",
			Tags:    []string{"projects"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Search across title, agency, and summary", false),
				openapi.QueryParam("status", "string", "Filter by lifecycle status", false),
				openapi.QueryParam("agency", "string", "Filter by agency name substring", false),
				openapi.QueryParam("eligible", "boolean", "Filter by eligibility", false),
				openapi.QueryParam("target_entity", "string", "Filter by routed entity", false),
				openapi.QueryParam("strategy", "string", "Filter by collaboration strategy", false),
				openapi.QueryParam("min_score", "integer", "Minimum total score", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated project list", "ProjectPage"),
			},
		},
	}

	spec.Paths["/projects/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get a project",
			Tags:       []string{"projects"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Project identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Project", "Project"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a project",
			Tags:       []string{"projects"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Project identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/projects/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search projects",
			Tags:        []string{"projects"},
			RequestBody: openapi.RequestBodyJSON("ProjectSearch", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated project list", "ProjectPage"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/projects/analyze"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Analyze an announcement",
			Description: "Extracts text from the uploaded HWP, HWPX, or PDF attachment, runs the eligibility evaluation, and upserts the project keyed by its fingerprint.",
			Tags:        []string{"projects"},
			RequestBody: analyzeRequestBody(),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Analyzed project", "Project"),
				400: openapi.ResponseRef("BadRequest"),
				413: {Description: "Attachment exceeds the upload size limit"},
				415: {Description: "Attachment format not supported"},
			},
		},
	}

	spec.Paths["/projects/preview"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Preview an analysis",
			Description: "Runs the same pipeline as analyze without persisting the result.",
			Tags:        []string{"projects"},
			RequestBody: analyzeRequestBody(),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Analysis report", "Report"),
				400: openapi.ResponseRef("BadRequest"),
				413: {Description: "Attachment exceeds the upload size limit"},
				415: {Description: "Attachment format not supported"},
			},
		},
	}

	return spec
}

func projectSchema() *openapi.Schema {
	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":          {Type: "string", Format: "uuid"},
			"title":       {Type: "string", Description: "Announcement title"},
			"agency":      {Type: "string", Description: "Issuing agency"},
			"end_date":    {Type: "string", Format: "date-time", Description: "Application deadline"},
			"source_url":  {Type: "string"},
			"budget":      {Type: "string", Description: "Announcement budget as stated, e.g. \"3억원\""},
			"filename":    {Type: "string", Description: "Uploaded attachment name"},
			"fingerprint": {Type: "string", Description: "Dedup key over title, agency, and end date"},
			"status": {
				Type: "string",
				Enum: []any{"pending", "analyzed", "manual_review", "failed", "not_parsed"},
			},
			"score":       {Type: "integer", Minimum: floatPtr(0), Maximum: floatPtr(100)},
			"eligible":    {Type: "boolean"},
			"kill_reason": {Type: "string", Enum: []any{"NO_CASH_LABOR", "RESTRICTED_ORGANIZER"}},
			"target_entity": {
				Type: "string",
				Enum: []any{"ENTITY_A", "ENTITY_B", "UNDETERMINED"},
			},
			"strategy": {
				Type: "string",
				Enum: []any{"ACADEMIC_PARTNER", "EXTERNAL_DEMAND", "INTERNAL_SYNERGY"},
			},
			"domain_fit":         {Type: "integer"},
			"role_fit":           {Type: "integer"},
			"tech_fit":           {Type: "integer"},
			"summary":            {Type: "string"},
			"extraction_warning": {Type: "string"},
			"analyzed_at":        {Type: "string", Format: "date-time"},
			"created_at":         {Type: "string", Format: "date-time"},
			"updated_at":         {Type: "string", Format: "date-time"},
		},
	}
}

func reportSchema() *openapi.Schema {
	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"extraction": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"segments":   {Type: "array", Items: &openapi.Schema{Type: "string"}},
					"image_only": {Type: "boolean"},
					"warning":    {Type: "string"},
				},
			},
			"verdict": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"score":         {Type: "integer"},
					"eligible":      {Type: "boolean"},
					"kill_reason":   {Type: "string"},
					"target_entity": {Type: "string"},
					"strategy":      {Type: "string"},
					"summary":       {Type: "string"},
				},
			},
			"oracle_failed": {Type: "boolean"},
		},
	}
}

func pageSchema(itemSchema string) *openapi.Schema {
	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        {Type: "array", Items: openapi.SchemaRef(itemSchema)},
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	}
}

func searchSchema() *openapi.Schema {
	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"page":          {Type: "integer", Example: 1},
			"page_size":     {Type: "integer", Example: 20},
			"search":        {Type: "string"},
			"sort":          {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending."},
			"status":        {Type: "string"},
			"title":         {Type: "string"},
			"agency":        {Type: "string"},
			"eligible":      {Type: "boolean"},
			"target_entity": {Type: "string"},
			"strategy":      {Type: "string"},
			"min_score":     {Type: "integer"},
		},
	}
}

func analyzeRequestBody() *openapi.RequestBody {
	return &openapi.RequestBody{
		Required: true,
		Content: map[string]*openapi.MediaType{
			"multipart/form-data": {
				Schema: &openapi.Schema{
					Type:     "object",
					Required: []string{"title", "file"},
					Properties: map[string]*openapi.Schema{
						"title":      {Type: "string", Description: "Announcement title"},
						"agency":     {Type: "string", Description: "Issuing agency"},
						"budget":     {Type: "string", Description: "Announcement budget as stated"},
						"end_date":   {Type: "string", Format: "date", Description: "Application deadline (YYYY-MM-DD)"},
						"source_url": {Type: "string"},
						"file":       {Type: "string", Format: "binary", Description: "HWP, HWPX, or PDF attachment"},
					},
				},
			},
		},
	}
}

func floatPtr(f float64) *float64 { return &f }
