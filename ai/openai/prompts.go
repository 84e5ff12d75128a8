package openai

import "fmt"

const enrichmentResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "document_type": {
      "type": "string"
    },
    "summary": {
      "type": "string"
    },
    "tags": {
      "type": "array",
      "items": {
        "type": "string",
        "pattern": "^[a-z0-9]+([ -][a-z0-9]+)*$"
      }
    },
    "date_of_authoring": {
      "type": "string"
    },
    "source": {
      "type": "string"
    },
    "reliability": {
      "type": "string",
      "enum": ["high", "medium", "low"]
    }
  },
  "required": ["document_type", "summary", "tags", "reliability"],
  "additionalProperties": false
}`

const enrichmentSystemPrompt = `Analyze the given document text and return semantic headers as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

` + enrichmentResponseSchema + `

Rules:
- document_type is a short phrase naming the kind of document (for example: "invoice", "technical report", "meeting minutes", "contract").
- summary is 1-3 sentences capturing what the document is about. Do not copy long passages verbatim.
- tags are 3-8 lowercase keywords or short phrases describing the document's topics.
- date_of_authoring is the date the document was written, in ISO 8601 format (YYYY-MM-DD), if it can be determined from the text. Omit the field or leave it empty if unknown. Never guess.
- source names the authoring organization or person if stated in the text. Leave empty if unknown.
- reliability rates how confident you are in your own analysis: "high" when the document is clear and complete, "medium" when parts are ambiguous, "low" when the text is fragmentary or garbled.
- Base everything strictly on the provided text. Do not hallucinate.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input (filename: q3_report.pdf):
"Quarterly Financial Report. Q3 2024. Prepared by Acme Corp Finance Department, October 12, 2024. Revenue grew 14% quarter over quarter..."
Output:
{
  "document_type": "financial report",
  "summary": "Quarterly financial report for Q3 2024 showing 14% revenue growth quarter over quarter.",
  "tags": ["finance", "quarterly report", "revenue", "q3 2024"],
  "date_of_authoring": "2024-10-12",
  "source": "Acme Corp Finance Department",
  "reliability": "high"
}`

// buildEnrichmentInput frames the document text with its filename so the
// model can use the name as a hint for type and source.
func buildEnrichmentInput(text, filename string) string {
	return fmt.Sprintf("Filename: %s\n\nDocument text:\n%s", filename, text)
}
