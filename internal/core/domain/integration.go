package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// IntegrationID identifies an integration offered by the connector gateway
type IntegrationID string

const (
	IntegrationSalesforceKnowledge        IntegrationID = "salesforce-knowledge"
	IntegrationSalesforceKnowledgeSandbox IntegrationID = "salesforce-knowledge-sandbox"
	IntegrationSalesforceCase             IntegrationID = "salesforce-case"
	IntegrationSalesforceCaseSandbox      IntegrationID = "salesforce-case-sandbox"
	IntegrationNotionPages                IntegrationID = "notion-pages"
	IntegrationWebsitePages               IntegrationID = "website-pages"
	IntegrationGitHubRepo                 IntegrationID = "github-repo"
)

// SalesforceEnvironment selects the Salesforce org variant to authorize
type SalesforceEnvironment string

const (
	SalesforceEnvironmentProduction SalesforceEnvironment = "production"
	SalesforceEnvironmentSandbox    SalesforceEnvironment = "sandbox"
)

// KnowledgeIntegrationID returns the Salesforce Knowledge integration
// for the given environment.
func KnowledgeIntegrationID(env SalesforceEnvironment) IntegrationID {
	if env == SalesforceEnvironmentSandbox {
		return IntegrationSalesforceKnowledgeSandbox
	}
	return IntegrationSalesforceKnowledge
}

// CaseIntegrationID returns the Salesforce Case integration for the
// given environment.
func CaseIntegrationID(env SalesforceEnvironment) IntegrationID {
	if env == SalesforceEnvironmentSandbox {
		return IntegrationSalesforceCaseSandbox
	}
	return IntegrationSalesforceCase
}

// integrationLabels maps integrations to their display labels
var integrationLabels = map[IntegrationID]string{
	IntegrationSalesforceKnowledge:        "Salesforce Knowledge",
	IntegrationSalesforceKnowledgeSandbox: "Salesforce Knowledge (Sandbox)",
	IntegrationSalesforceCase:             "Salesforce Case",
	IntegrationSalesforceCaseSandbox:      "Salesforce Case (Sandbox)",
	IntegrationNotionPages:                "Notion",
	IntegrationWebsitePages:               "Website",
	IntegrationGitHubRepo:                 "GitHub",
}

var integrationIcons = map[IntegrationID]string{
	IntegrationSalesforceKnowledge:        "salesforce",
	IntegrationSalesforceKnowledgeSandbox: "salesforce",
	IntegrationSalesforceCase:             "salesforce",
	IntegrationSalesforceCaseSandbox:      "salesforce",
	IntegrationNotionPages:                "notion",
	IntegrationWebsitePages:               "globe",
	IntegrationGitHubRepo:                 "github",
}

// IntegrationLabel returns the display label for an integration, or ""
// if the integration is unknown.
func IntegrationLabel(id IntegrationID) string {
	return integrationLabels[id]
}

// IntegrationIcon returns the icon identifier for an integration.
func IntegrationIcon(id IntegrationID) string {
	return integrationIcons[id]
}

// shortLabel drops a trailing qualifier from a label:
// "Salesforce Knowledge" -> "Salesforce".
func shortLabel(label string) string {
	if i := strings.IndexByte(label, ' '); i > 0 {
		return label[:i]
	}
	return label
}

// IsURL reports whether s is a well-formed absolute http(s) URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// UniqueSourceName returns a display name for a new source based on the
// integration label, suffixing " (N)" until it does not collide with an
// existing name.
func UniqueSourceName(id IntegrationID, existing []string) string {
	base := IntegrationLabel(id)
	if base == "" {
		base = string(id)
	}

	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[name] = true
	}

	if !taken[base] {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
