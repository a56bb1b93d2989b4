package params

// Endpoint names.
const (
	Occurrence       = "occurrence"
	Statistics       = "statistics"
	Facet            = "facet"
	Checklist        = "checklist"
	Dataset          = "dataset"
	DatasetSearch    = "dataset_search"
	DatasetLookup    = "dataset_lookup"
	Institute        = "institute"
	InstituteLookup  = "institute_lookup"
	Taxon            = "taxon"
	TaxonAnnotations = "taxon_annotations"
)

// MaxSize is the largest page size the occurrence API accepts.
const MaxSize = 10000

var (
	fScientificName = Field{Name: KeyScientificName, Kind: KindString,
		Description: "Scientific name. Leave empty to include all taxa. Can be used to include infra order of species if specified in the request."}
	fTaxonID     = Field{Name: "taxonid", Kind: KindString, Description: "Taxon AphiaID."}
	fDatasetID   = Field{Name: KeyDatasetID, Kind: KindUUID, Description: "Dataset UUID."}
	fAreaID      = Field{Name: KeyAreaID, Kind: KindString, Description: "Area ID. The OBIS area identifier, not the name of the place, area or region."}
	fInstituteID = Field{Name: KeyInstituteID, Kind: KindString, Description: "Institute ID. The OBIS institute identifier, not the name of the institute."}
	fNodeID      = Field{Name: "nodeid", Kind: KindUUID, Description: "Node UUID. The OBIS node identifier."}
	fStartDate   = Field{Name: "startdate", Kind: KindDate, Description: "Start date formatted as YYYY-MM-DD. Fetch records after this date."}
	fEndDate     = Field{Name: "enddate", Kind: KindDate, Description: "End date formatted as YYYY-MM-DD."}
	fStartDepth  = Field{Name: "startdepth", Kind: KindInt, Description: "Start depth, in meters."}
	fEndDepth    = Field{Name: "enddepth", Kind: KindInt, Description: "End depth, in meters."}
	fGeometry    = Field{Name: "geometry", Kind: KindString, Description: "Geometry, formatted as WKT or GeoHash."}
	fRedlist     = Field{Name: "redlist", Kind: KindBool, Description: "Red List species only, true/false."}
	fHab         = Field{Name: "hab", Kind: KindBool, Description: "HAB species only, true/false."}
	fWrims       = Field{Name: "wrims", Kind: KindBool, Description: "WRiMS species only, true/false."}
	fMof         = Field{Name: "mof", Kind: KindBool, Description: "Include MeasurementOrFact records, true/false."}
	fDNA         = Field{Name: "dna", Kind: KindBool, Description: "Include DNADerivedData records, true/false."}
	fExtensions  = Field{Name: "extensions", Kind: KindString, Description: "Extensions to include (e.g. MeasurementOrFact, DNADerivedData)."}
	fHasExt      = Field{Name: "hasextensions", Kind: KindString, Description: "Extensions that need to be present (e.g. MeasurementOrFact, DNADerivedData)."}
	fQCFields    = Field{Name: "qcfields", Kind: KindBool, Description: "Include lists of missing and invalid fields, true/false."}
	fDropped     = Field{Name: "dropped", Kind: KindString, Description: "Include dropped records (include) or get dropped records exclusively (true)."}
	fAbsence     = Field{Name: "absence", Kind: KindString, Description: "Include absence records (include) or get absence records exclusively (true)."}
	fEvent       = Field{Name: "event", Kind: KindString, Description: "Include pure event records (include) or get pure event records exclusively (true)."}
	fFlags       = Field{Name: "flags", Kind: KindString, Description: "Comma separated list of quality flags which need to be set."}
	fExclude     = Field{Name: "exclude", Kind: KindString, Description: "Comma separated list of quality flags to be excluded."}
	fFields      = Field{Name: "fields", Kind: KindString, Description: "Fields to be included in the result set."}
	fAfter       = Field{Name: "after", Kind: KindString, Description: "Occurrence UUID up to which to skip."}
	fSize        = Field{Name: "size", Kind: KindInt, Description: "Response size. Maximum value is 10000."}

	fArea        = Field{Name: KeyArea, Kind: KindString, FreeText: true, Description: "Name of the area, place or region specified in the user request."}
	fInstitute   = Field{Name: KeyInstitute, Kind: KindString, FreeText: true, Description: "Name of the institute in the request."}
	fDatasetName = Field{Name: KeyDatasetName, Kind: KindString, FreeText: true, Description: "Name of the dataset specified in the query."}
	fCommonName  = Field{Name: KeyCommonName, Kind: KindString, FreeText: true, Description: "Common name of the species specified in the query."}
)

func measurementFields() []Field {
	var out []Field
	for _, part := range []string{"type", "value", "unit"} {
		out = append(out,
			Field{Name: "measurement" + part, Kind: KindString, Description: "Measurement " + part + " to be present for occurrence."},
			Field{Name: "measurement" + part + "id", Kind: KindString, Description: "Measurement " + part + " ID to be present for occurrence."},
		)
	}
	return out
}

func concat(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var (
	filterFields = []Field{fScientificName, fTaxonID, fDatasetID, fAreaID, fInstituteID, fNodeID,
		fStartDate, fEndDate, fStartDepth, fEndDepth, fGeometry, fRedlist, fHab, fWrims}

	occurrenceResolutions = []Resolution{
		{KeyInstitute, KeyInstituteID},
		{KeyArea, KeyAreaID},
		{KeyDatasetName, KeyDatasetID},
		{KeyCommonName, KeyScientificName},
	}
	filterResolutions = []Resolution{
		{KeyInstitute, KeyInstituteID},
		{KeyArea, KeyAreaID},
		{KeyCommonName, KeyScientificName},
	}
)

// Endpoints returns the definitions of every supported OBIS API.
func Endpoints() []*Endpoint {
	return []*Endpoint{
		{
			Name:        Occurrence,
			Path:        "occurrence",
			Description: "Retrieves occurrence records of species from OBIS, filtered by taxon, area, institute, dataset, date, depth and quality flags.",
			Fields: concat(filterFields,
				[]Field{fMof, fDNA, fExtensions, fHasExt, fQCFields, fDropped, fAbsence, fEvent, fFlags, fExclude, fFields, fAfter, fSize},
				measurementFields(),
				[]Field{fArea, fInstitute, fDatasetName, fCommonName}),
			Resolutions: occurrenceResolutions,
		},
		{
			Name:        Statistics,
			Path:        "statistics",
			Description: "Summary statistics (record, species and dataset counts) for an occurrence filter.",
			Fields: concat(filterFields,
				[]Field{fDropped, fAbsence, fFlags, fExclude},
				[]Field{fArea, fInstitute, fDatasetName, fCommonName}),
			Resolutions: occurrenceResolutions,
		},
		{
			Name:        Facet,
			Path:        "facet",
			Description: "Counts occurrence records grouped by one or more facets such as originalScientificName or node_id.",
			Fields: concat(
				[]Field{
					{Name: "facets", Kind: KindList, Description: "Comma separated list of facets."},
					{Name: "composite", Kind: KindBool, Description: "Composite aggregation."},
				},
				filterFields,
				[]Field{fDropped, fAbsence, fFlags, fExclude},
				[]Field{fArea, fInstitute, fDatasetName, fCommonName}),
			Resolutions: occurrenceResolutions,
		},
		{
			Name:        Checklist,
			Path:        "checklist",
			Description: "Generates a checklist of taxa occurring within a filter.",
			Fields: concat(filterFields,
				[]Field{fDropped, fAbsence, fFlags, fExclude, fAfter, fSize},
				[]Field{fArea, fInstitute, fCommonName}),
			Resolutions: filterResolutions,
		},
		{
			Name:        Dataset,
			Path:        "dataset",
			Description: "Lists datasets that contain records matching a filter.",
			Fields: concat(filterFields,
				[]Field{fDropped, fAbsence, fExclude, fFields, fAfter, fSize},
				[]Field{fArea, fInstitute, fCommonName}),
			Resolutions: filterResolutions,
		},
		{
			Name:        DatasetSearch,
			Path:        "dataset/search2",
			Description: "Full text search over dataset metadata using common terms.",
			Fields: []Field{
				{Name: "q", Kind: KindString, Description: "Search terms."},
				fSize,
			},
		},
		{
			Name:        DatasetLookup,
			Path:        "dataset",
			Description: "Fetches the metadata of a single dataset by UUID or by name.",
			Fields: []Field{
				{Name: KeyID, Kind: KindUUID, Description: "Dataset UUID from the request."},
				fDatasetName,
			},
			Resolutions: []Resolution{{KeyDatasetName, KeyID}},
			PathParam:   KeyID,
		},
		{
			Name:        Institute,
			Path:        "institute",
			Description: "Lists institutes that contributed records matching a filter.",
			Fields: concat(filterFields,
				[]Field{fFlags, fExclude, fDropped, fAbsence},
				[]Field{fArea, fInstitute}),
			Resolutions: []Resolution{{KeyInstitute, KeyInstituteID}, {KeyArea, KeyAreaID}},
		},
		{
			Name:        InstituteLookup,
			Path:        "institute",
			Description: "Fetches a single institute by OBIS identifier or by name.",
			Fields: []Field{
				{Name: KeyID, Kind: KindString, Description: "Institute ID."},
				fArea, fInstitute,
			},
			Resolutions: []Resolution{{KeyInstitute, KeyID}, {KeyArea, KeyAreaID}},
			PathParam:   KeyID,
		},
		{
			Name:        Taxon,
			Path:        "taxon",
			Description: "Fetches a taxon record by AphiaID, scientific name or common name.",
			Fields: []Field{
				{Name: KeyID, Kind: KindString, Description: "Taxon AphiaID."},
				{Name: KeyScientificName, Kind: KindString, FreeText: true, Description: "Scientific name of the species."},
				fCommonName,
			},
			Resolutions: []Resolution{{KeyScientificName, KeyID}, {KeyCommonName, KeyID}},
			PathParam:   KeyID,
		},
		{
			Name:        TaxonAnnotations,
			Path:        "taxon/annotations",
			Description: "Retrieves scientific name annotations from WoRMS for a taxon.",
			Fields:      []Field{fScientificName, fCommonName},
			Resolutions: []Resolution{{KeyCommonName, KeyScientificName}},
		},
	}
}

// DefaultRegistry returns a registry with every supported endpoint.
func DefaultRegistry() *Registry {
	return NewRegistry(Endpoints()...)
}
