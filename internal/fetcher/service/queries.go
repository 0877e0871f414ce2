package service

import "fmt"

// negativeTerms excludes the sports and entertainment noise that dominates
// Argentine and Spanish search results for short company names.
const negativeTerms = `-UEFA -"Euro Cup" -"Copa America" -Messi -"Champions League" -futebol -futbol`

// queryTemplates are the machine-tool industry query shapes, two per language
// plus two technical-niche variants. %[1]s is the quoted competitor name,
// %[2]s the negative terms.
var queryTemplates = []string{
	// English
	`"%[1]s" ("machine tool" OR "CNC" OR "machining center" OR "laser fiber" OR "ISO 9001" OR "industrial machinery") %[2]s`,
	`"%[1]s" (contract OR acquisition OR "factory expansion" OR "fleet expansion" OR investment) %[2]s`,
	// Spanish
	`"%[1]s" ("máquina herramienta" OR "mecanizado" OR "maquinaria" OR "automatización" OR "fibra láser") %[2]s`,
	`"%[1]s" (contrato OR licitación OR adquisición OR fábrica OR inversión) %[2]s`,
	// Portuguese
	`"%[1]s" ("máquina ferramenta" OR "usinagem" OR "mecanizado" OR "automação" OR "fibra laser" OR "frota") %[2]s`,
	`"%[1]s" (contrato OR licitação OR aquisição OR investimento OR expansão OR frota) %[2]s`,
	// Technical niche
	`"%[1]s" (CNC OR "laser de fibra" OR "3D laser" OR injetoras OR "ISO 9001" OR "certificação") %[2]s`,
	`"%[1]s" (frota OR usinagem OR mecanizado OR "laser de fibra" OR "corte a laser") %[2]s`,
}

// BuildQueries renders every query template for one competitor search name.
func BuildQueries(searchName string) []string {
	queries := make([]string, 0, len(queryTemplates))
	for _, template := range queryTemplates {
		queries = append(queries, fmt.Sprintf(template, searchName, negativeTerms))
	}
	return queries
}
