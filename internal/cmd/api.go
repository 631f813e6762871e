package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newAPICmd() *cobra.Command {
	var method string
	var fields []string
	var rawFields []string
	var inputFile string
	var jsonBody string
	var silent bool
	var includeStatus bool

	cmd := &cobra.Command{
		Use:     "api <endpoint>",
		Aliases: []string{"ap"},
		Short:   "Make raw API requests to any backend endpoint",
		Long: `Make raw API requests to any backend endpoint.

This command provides direct access to any backend API endpoint, giving
scripts full flexibility to call APIs that may not have dedicated CLI
commands.

The endpoint path is relative to /api. For example, "/threads" becomes:
  <base-url>/api/threads`,
		Example: `  # GET request (default)
  leadflow api /threads

  # GET campaign status
  leadflow api /campaign/t-1a2b3c/status

  # POST request with fields
  leadflow api /campaign/start -X POST -f query="fintech startups" -f mode=test

  # POST with a JSON null using a raw field
  leadflow api /campaign/start -X POST -f query=q -f mode=test -F thread_id=null

  # Inline JSON body
  leadflow api /campaign/t-1a2b3c/approve-emails -X POST -d '{"decision":"yes"}'

  # Read body from file
  leadflow api /campaign/start -X POST -i body.json

  # Read body from stdin
  echo '{"decision": "no"}' | leadflow api /campaign/t-1a2b3c/approve-emails -X POST -i -

  # Filter response with jq (JSON output required)
  leadflow api /threads --output json --jq '.threads[0].thread_id'

  # Silent mode (no output, useful for mutations)
  leadflow api /campaign/t-1a2b3c/continue -X POST -s`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			endpoint := args[0]
			out := cmd.OutOrStdout()

			validMethods := map[string]bool{
				"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
			}
			method = strings.ToUpper(method)
			if !validMethods[method] {
				return fmt.Errorf("invalid HTTP method %q: must be one of GET, POST, PUT, PATCH, DELETE", method)
			}

			if jsonBody != "" && inputFile != "" {
				return fmt.Errorf("cannot use both --body and --input flags")
			}

			body, err := buildRequestBody(fields, rawFields, inputFile, jsonBody)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			respBody, statusCode, err := client.DoRaw(cmdContext(cmd), method, endpoint, body)
			if err != nil {
				return err
			}

			if silent {
				return nil
			}

			// JSON output uses the global outfmt pipeline (--output json/--json)
			if isJSON(cmd) {
				payload := apiJSONPayload(respBody, statusCode, includeStatus)
				return printJSON(cmd, payload)
			}

			if includeStatus {
				_, _ = fmt.Fprintf(out, "HTTP %d\n\n", statusCode)
			}

			if len(respBody) > 0 {
				// Pretty print JSON if possible
				var jsonData any
				if err := json.Unmarshal(respBody, &jsonData); err == nil {
					prettyJSON, err := json.MarshalIndent(jsonData, "", "  ")
					if err == nil {
						_, _ = fmt.Fprintln(out, string(prettyJSON))
						return nil
					}
				}
				_, _ = fmt.Fprintln(out, string(respBody))
			}

			return nil
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Request body field as key=value (string)")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "Request body field as key=value (JSON parsed)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&jsonBody, "body", "d", "", "Request body as inline JSON string")
	cmd.Flags().BoolVarP(&silent, "silent-response", "s", false, "Suppress output")
	cmd.Flags().BoolVar(&includeStatus, "include", false, "Include the response status in output")
	flagAlias(cmd.Flags(), "include", "inc")

	return cmd
}

func apiJSONPayload(respBody []byte, statusCode int, includeStatus bool) any {
	body := apiJSONBody(respBody)
	if !includeStatus {
		return body
	}
	return map[string]any{
		"status": statusCode,
		"body":   body,
	}
}

func apiJSONBody(respBody []byte) any {
	if len(respBody) == 0 {
		return nil
	}
	if !json.Valid(respBody) {
		return string(respBody)
	}
	pretty := &bytes.Buffer{}
	if err := json.Indent(pretty, respBody, "", "  "); err != nil {
		return json.RawMessage(respBody)
	}
	return json.RawMessage(pretty.Bytes())
}

// buildRequestBody constructs the request body from fields and/or input file/inline JSON
func buildRequestBody(fields, rawFields []string, inputFile, jsonBody string) (map[string]any, error) {
	body := make(map[string]any)

	// Parse inline JSON body first (can be overridden by fields)
	if jsonBody != "" {
		if err := json.Unmarshal([]byte(jsonBody), &body); err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
	}

	// Read from input file (can be overridden by fields)
	if inputFile != "" {
		var inputData []byte
		var err error

		if inputFile == "-" {
			inputData, err = io.ReadAll(os.Stdin)
		} else {
			inputData, err = os.ReadFile(inputFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		if err := json.Unmarshal(inputData, &body); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	// Parse regular fields (string values)
	for _, field := range fields {
		key, value, err := parseField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	// Parse raw fields (JSON values)
	for _, field := range rawFields {
		key, value, err := parseRawField(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	// Return nil if no body content
	if len(body) == 0 {
		return nil, nil
	}

	return body, nil
}

// parseField parses a key=value field where value is a string
func parseField(field string) (string, string, error) {
	parts := strings.SplitN(field, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	return parts[0], parts[1], nil
}

// parseRawField parses a key=value field where value is JSON
func parseRawField(field string) (string, any, error) {
	parts := strings.SplitN(field, "=", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("invalid raw field format %q: must be key=value", field)
	}

	key := parts[0]
	valueStr := parts[1]

	var value any
	if err := json.Unmarshal([]byte(valueStr), &value); err != nil {
		return "", nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
	}

	return key, value, nil
}
