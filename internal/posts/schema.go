package posts

import "github.com/santhosh-tekuri/jsonschema/v5"

const indexSchemaURL = "postpress://schemas/post-index.json"

// indexSchema is deliberately lenient: records written before thumbnails,
// tags and templates existed must keep loading.
const indexSchemaSource = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "slug", "url", "date"],
    "properties": {
      "title": {"type": "string"},
      "slug": {"type": "string"},
      "description": {"type": "string"},
      "author": {"type": "string"},
      "date": {"type": "string"},
      "url": {"type": "string"},
      "cover": {"type": "string"},
      "thumbnail": {"type": "string"},
      "tags": {"type": ["array", "null"], "items": {"type": "string"}},
      "template": {"type": "integer"}
    }
  }
}`

var indexSchema = jsonschema.MustCompileString(indexSchemaURL, indexSchemaSource)
