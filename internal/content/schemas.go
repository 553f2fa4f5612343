package content

import "google.golang.org/genai"

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func stringListSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringSchema()}
}

func outlineSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"chapters": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":   stringSchema(),
						"focus":   stringSchema(),
						"actions": stringListSchema(),
					},
					Required: []string{"title", "focus", "actions"},
				},
			},
			"metadata": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"femaleLead": stringSchema(),
					"maleLead":   stringSchema(),
					"villain":    stringSchema(),
				},
				Required: []string{"femaleLead", "maleLead", "villain"},
			},
		},
		Required: []string{"chapters", "metadata"},
	}
}

func seoSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"titles":      stringListSchema(),
			"hashtags":    stringListSchema(),
			"keywords":    stringListSchema(),
			"description": stringSchema(),
		},
		Required: []string{"titles", "hashtags", "keywords", "description"},
	}
}
