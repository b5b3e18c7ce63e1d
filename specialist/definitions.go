package specialist

import "help-desk/domain"

// definitions is the static specialist table. Templates are loaded from templates/<id>.txt.
var definitions = []domain.SpecialistDefinition{
	{
		ID:             domain.GeneralAssistant,
		Domain:         domain.DomainGeneral,
		DisplayName:    "Ed",
		Qualifications: []string{"School leadership generalist"},
		Attribution:    "Source: general guidance from the Department for Education (gov.uk). Check your local policies.",
	},
	{
		ID:             domain.OperationsManager,
		Domain:         domain.DomainOperations,
		DisplayName:    "Operations Manager",
		Qualifications: []string{"Level 5 school business management", "Attendance and admissions administration"},
		Keywords: []string{
			"attendance", "pupil absence", "persistent absence", "admissions", "timetable", "timetabling",
			"census", "school census", "term dates", "registers", "attendance codes", "school trip",
			"school trips", "transport", "lunchtime", "cover",
		},
		Attribution: "Source: DfE Working Together to Improve School Attendance and the school census guide (gov.uk).",
	},
	{
		ID:             domain.EstatesCompliance,
		Domain:         domain.DomainEstates,
		DisplayName:    "Estates & Compliance Specialist",
		Qualifications: []string{"NEBOSH General Certificate", "Legionella responsible person training", "IOSH Managing Safely"},
		Keywords: []string{
			"legionella", "water hygiene", "water temperature", "hot water", "cold water", "tmv",
			"thermostatic mixing valve", "fire", "fire safety", "fire risk assessment", "fire drill",
			"asbestos", "asbestos register", "gas safety", "electrical testing", "pat testing", "eicr",
			"health and safety", "coshh", "boiler", "roof", "premises", "maintenance", "condition survey",
			"ventilation", "raac", "site manager",
		},
		Attribution: "Source: HSE ACoP L8 and HSG274, and DfE Good Estate Management for Schools (gov.uk).",
	},
	{
		ID:             domain.HRAdvisor,
		Domain:         domain.DomainHR,
		DisplayName:    "HR Adviser",
		Qualifications: []string{"CIPD Level 7", "Schools employment law"},
		Keywords: []string{
			"contract", "contracts", "staff absence", "sickness", "sick leave", "maternity", "paternity",
			"disciplinary", "grievance", "capability", "recruitment", "redundancy", "restructure",
			"pay scale", "teacher pay", "stpcd", "appraisal", "performance management", "probation",
			"tupe", "employment", "employee", "staff wellbeing", "salary", "salaries", "hr",
		},
		Attribution: "Source: School Teachers' Pay and Conditions Document and ACAS guidance (gov.uk, acas.org.uk).",
	},
	{
		ID:             domain.SENDSpecialist,
		Domain:         domain.DomainSEND,
		DisplayName:    "SEND Specialist",
		Qualifications: []string{"National Award for SEN Coordination", "Educational psychology liaison"},
		Keywords: []string{
			"senco", "ehcp", "ehc plan", "ehc needs assessment", "annual review", "special educational needs",
			"sen support", "send support", "send provision", "send code of practice", "send funding",
			"graduated approach", "reasonable adjustments", "autism", "adhd", "dyslexia",
			"high needs funding", "provision map",
		},
		Attribution: "Source: SEND Code of Practice 0 to 25 years (DfE, 2015).",
	},
	{
		ID:             domain.DataProtection,
		Domain:         domain.DomainData,
		DisplayName:    "Data Protection Officer",
		Qualifications: []string{"BCS Practitioner Certificate in Data Protection"},
		Keywords: []string{
			"gdpr", "uk gdpr", "data protection", "subject access request", "sar", "data breach",
			"privacy notice", "retention", "data retention", "dpo", "ico", "personal data",
			"cctv", "data sharing", "consent form",
		},
		Attribution: "Source: ICO guidance for education and the DfE data protection toolkit for schools.",
	},
	{
		ID:             domain.SafeguardingLead,
		Domain:         domain.DomainSafeguarding,
		DisplayName:    "Safeguarding Lead",
		Qualifications: []string{"Designated Safeguarding Lead training", "Safer recruitment certification"},
		Keywords: []string{
			"safeguarding", "kcsie", "keeping children safe", "keeping children safe in education", "dsl",
			"child protection", "designated safeguarding lead", "single central record", "dbs", "dbs check",
			"allegation", "lado", "prevent duty", "low level concern", "online safety", "early help",
		},
		Attribution: "Source: Keeping Children Safe in Education (DfE) and Working Together to Safeguard Children.",
	},
	{
		ID:             domain.SchoolBusiness,
		Domain:         domain.DomainFinance,
		DisplayName:    "School Business Manager",
		Qualifications: []string{"CIPFA schools finance", "ISBL Fellow"},
		Keywords: []string{
			"budget", "budgets", "finance", "procurement", "tender", "invoice", "pupil premium", "funding",
			"sfvs", "academy trust handbook", "cost saving", "income", "forecast", "three year budget",
			"energy costs", "reserves",
		},
		Attribution: "Source: Academy Trust Handbook and the Schools Financial Value Standard (gov.uk).",
	},
	{
		ID:             domain.GovernanceClerk,
		Domain:         domain.DomainGovernance,
		DisplayName:    "Governance Clerk",
		Qualifications: []string{"Level 3 Certificate in Clerking", "NGA governance leadership"},
		Keywords: []string{
			"governor", "governors", "governing board", "trust board", "board meeting", "clerk", "minutes",
			"quorum", "terms of reference", "scheme of delegation", "statutory policies", "governance handbook",
		},
		Attribution: "Source: DfE Governance Handbook and the statutory policies for schools and academy trusts list.",
	},
	{
		ID:             domain.TrustStrategist,
		Domain:         domain.DomainStrategy,
		DisplayName:    "Trust Strategist",
		Qualifications: []string{"Former MAT chief executive", "NPQEL"},
		Keywords: []string{
			"strategy", "strategic", "trust growth", "mat growth", "multi academy trust", "school improvement",
			"central services", "merger", "academy conversion", "convert to academy", "join a trust",
			"five year plan",
		},
		Attribution: "Source: DfE Commissioning high-quality trusts and the Academy Trust Handbook.",
	},
}
