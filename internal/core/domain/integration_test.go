package domain

import "testing"

func TestKnowledgeIntegrationID(t *testing.T) {
	tests := []struct {
		env  SalesforceEnvironment
		want IntegrationID
	}{
		{SalesforceEnvironmentProduction, IntegrationSalesforceKnowledge},
		{SalesforceEnvironmentSandbox, IntegrationSalesforceKnowledgeSandbox},
		{"", IntegrationSalesforceKnowledge},
	}

	for _, tt := range tests {
		if got := KnowledgeIntegrationID(tt.env); got != tt.want {
			t.Errorf("KnowledgeIntegrationID(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestUniqueSourceName(t *testing.T) {
	tests := []struct {
		name     string
		id       IntegrationID
		existing []string
		want     string
	}{
		{
			name:     "no collision",
			id:       IntegrationSalesforceKnowledge,
			existing: nil,
			want:     "Salesforce Knowledge",
		},
		{
			name:     "one collision",
			id:       IntegrationSalesforceKnowledge,
			existing: []string{"Salesforce Knowledge"},
			want:     "Salesforce Knowledge (1)",
		},
		{
			name:     "two collisions",
			id:       IntegrationSalesforceKnowledge,
			existing: []string{"Salesforce Knowledge", "Salesforce Knowledge (1)"},
			want:     "Salesforce Knowledge (2)",
		},
		{
			name:     "gap is reused",
			id:       IntegrationNotionPages,
			existing: []string{"Notion", "Notion (2)"},
			want:     "Notion (1)",
		},
		{
			name:     "unknown integration falls back to id",
			id:       "homegrown-wiki",
			existing: nil,
			want:     "homegrown-wiki",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueSourceName(tt.id, tt.existing)
			if got != tt.want {
				t.Errorf("UniqueSourceName(%q, %v) = %q, want %q", tt.id, tt.existing, got, tt.want)
			}
			for _, name := range tt.existing {
				if got == name {
					t.Errorf("generated name %q collides with existing names", got)
				}
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://acme.my.salesforce.com", true},
		{"http://localhost:3000", true},
		{"acme.my.salesforce.com", false},
		{"ftp://acme.com", false},
		{"https://", false},
		{"", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := IsURL(tt.url); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
