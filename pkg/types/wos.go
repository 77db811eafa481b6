// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Summary table columns produced by the WoS fetch stage. The filter stage
// discovers its columns by name pattern, so these names are what tie the
// two stages together: "Title", "Abstract", "Funding*", "*Keywords*" are
// searchable, "WoSCategories*" are category columns.
const (
	ColumnUT                 = "UT"
	ColumnTitle              = "Title"
	ColumnJournal            = "Journal"
	ColumnYear               = "Year"
	ColumnDOI                = "DOI"
	ColumnAuthors            = "Authors"
	ColumnAuthorEmails       = "AuthorEmails"
	ColumnAbstract           = "Abstract"
	ColumnFundingText        = "FundingText"
	ColumnFundingAgencies    = "FundingAgencies"
	ColumnGrantNumbers       = "GrantNumbers"
	ColumnAuthorKeywords     = "AuthorKeywords"
	ColumnKeywordsPlus       = "KeywordsPlus"
	ColumnCategoriesTrad     = "WoSCategoriesTraditional"
	ColumnCategoriesExtended = "WoSCategoriesExtended"
)

// SummaryColumns is the header of the flattened WoS summary table.
var SummaryColumns = []string{
	ColumnUT,
	ColumnTitle,
	ColumnJournal,
	ColumnYear,
	ColumnDOI,
	ColumnAuthors,
	ColumnAuthorEmails,
	ColumnAbstract,
	ColumnFundingText,
	ColumnFundingAgencies,
	ColumnGrantNumbers,
	ColumnAuthorKeywords,
	ColumnKeywordsPlus,
	ColumnCategoriesTrad,
	ColumnCategoriesExtended,
}
