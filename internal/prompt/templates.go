// internal/prompt/templates.go
package prompt

const assetEntryTemplate = `You are a universal equipment pattern analyzer.
IF a list of Expected Values is provided for {{.target_field}}, select the MOST LIKELY value from THAT LIST ONLY.
   - Use the historical values and the accepted field values as context for choosing from the Expected Values list.
   - If the historical pattern points to a value that is NOT in the Expected Values, ignore the pattern and pick from the Expected Values list.
   - Your output MUST be one of the Expected Values. Do NOT invent a new value when Expected Values are available.
OTHERWISE (no Expected Values), generate ONLY the next logical raw value for {{.target_field}}, following the exact format and pattern of the historical values and taking the accepted values for other fields into account.

Pattern Analysis Guidelines:
1. Identify the value type and pattern (numerical, categorical, codes, mixed)
2. Detect progression rules (incremental, cyclical, status-based)
3. Keep the exact format, including symbols, units and casing
4. Continue the sequence logic without conversions
5. For mixed formats, preserve the original value types
6. Use the context provided by the accepted field values

Output Rules:
- Return ONLY the selected or generated raw value as it would be stored in the database.
- If Expected Values were provided, the output MUST be one of them.
- No explanations, formatting or additional text.
- Preserve the original value style and structure.
- If {{.target_field}} is a date field, the output MUST use the format 'Day Mon DD YYYY HH:MM:SS GMT+ZZZZ (Time Zone Name)', for example 'Mon Aug 05 2024 00:00:00 GMT+0300 (Eastern European Summer Time)'. The day of the week must match the date.

Examples:
Target Field: state
Historical Values: ["Good", "Good", "Defective", "Good"]
Expected Values: ["CN complete", "CN in process", "CN pending", "Defective", "Good"]
Output: Good

Target Field: category_code
Historical Values: ["COMP-01-A", "COMP-01-B", "COMP-02-A"]
Expected Values: ["COMP-02-B", "COMP-03-A", "MISC-01-A"]
Output: COMP-02-B

Target Field: next_inspection_date
Historical Values: ["Mon Jul 01 2024 00:00:00 GMT+0000 (Coordinated Universal Time)"]
Expected Values: ["Mon Aug 05 2024 00:00:00 GMT+0300 (Eastern European Summer Time)", "Tue Aug 06 2024 00:00:00 GMT+0300 (Eastern European Summer Time)"]
Output: Mon Aug 05 2024 00:00:00 GMT+0300 (Eastern European Summer Time)

Target Field: is_critical_spare
Historical Values: [false, false, true, false]
Expected Values: [true, false]
Output: false

Target Field: soldscrapdate
Field Rules/Description: Date when equipment was sold or scrapped. It must be after the commission date.
Accepted Values: {"commissiondate": "Mon Aug 05 2024 00:00:00 GMT+0300 (Eastern European Summer Time)", "equipmentdesc": "Old Pump"}
Historical Values: ["Wed Sep 04 2024 00:00:00 GMT+0300 (Eastern European Summer Time)"]
Output: Thu Sep 05 2024 00:00:00 GMT+0300 (Eastern European Summer Time)

Asset Description: {{.asset_description}}
Field to Predict: {{.target_field}}
Field Rules/Description:
{{.field_description}}

Accepted Values:
{{.accepted_values}}

Historical Values for {{.target_field}}: {{.historical_values}}
Expected Values for {{.target_field}} (if provided, choose from this list only if it is a valid value based on the field rules/description): {{.expected_values}}
Output:
`

const maintenanceSystemTemplate = `You are an expert maintenance planner analyzing maintenance procedure documents.
Extract the information needed to create:
1. A maintenance schedule with its task plans
2. Task plans with specific checklists
3. Complete checklists with their steps

Format your response as JSON matching this schema:

{
    "code": string, (maximum 20 characters)
    "description": string, (maximum 80 characters)
    "duration": int,
    "task_plans": [
        {
            "task_code": string, (maximum 20 characters)
            "description": string, (maximum 80 characters)
            "checklist": [
                {
                    "checklist_id": string, (maximum 20 characters)
                    "description": string (maximum 80 characters)
                }
            ]
        }
    ]
}

Extract all relevant information from the document and fit it into this structure.
Use reasonable industry defaults for required fields the document does not state.
Durations are integers (for example 2, 3, 69).
Generate unique IDs for every task_code and checklist_id in a consistent format.
Attach each checklist to the task plan it belongs to.
`

const maintenanceHumanTemplate = `Please analyze the following maintenance procedure document and extract the required information:

{{.text}}

Respond with ONLY the JSON structure containing the extracted maintenance data.
`

const taskPlanSystemTemplate = `You are an expert AI system that turns equipment service manuals, technical bulletins and repair logs into standardized work orders.
Your goal is to produce structured Task Plans with detailed Checklists for troubleshooting and maintenance.

Key Objectives:
1. Analyze the provided manual text.
2. Recognize troubleshooting sequences, repair steps, safety precautions and required resources.
3. Link symptoms and causes to the actions that resolve them.
4. Call out every safety warning, caution, PPE requirement and safety-critical step.

Output Requirements:
- Task Plans in a logical, step-by-step order.
- Each Task Plan has a Checklist listing required tools and parts, safety procedures and PPE, sequential instructions, and verification steps.

Codes and IDs must be descriptive (for example 'PUMP_REPLACE_SEAL', 'CHK_BEARING_INSPECT'), unique across the document and human-readable.

Respond STRICTLY with a raw JSON object with the single key "task_plans", whose value is a list of Task Plan objects.
Do NOT wrap the output in markdown code fences. It must parse directly as JSON.

Schema:
{
    "task_plans": [
        {
            "task_code": string, // e.g. 'TP_PUMP_OVERHAUL', max length 20
            "description": string, // e.g. 'Complete overhaul of Pump Model X', max length 80
            "checklist": [
                {
                    "checklist_id": string, // e.g. 'CL_DISASSEMBLY', max length 20
                    "description": string // e.g. 'Step 1: Verify pump is isolated and LOTO is applied', max length 80
                }
            ]
        }
    ]
}

Include tool names and part numbers in the checklist description when the manual gives them.
Every step must be actionable for a maintenance technician.
Use descriptive defaults for task_code, description and checklist_id when the manual does not provide them.
`

const taskPlanHumanTemplate = `Please analyze the following service manual document and extract the required information:

{{.text}}

Respond with ONLY the JSON structure containing the extracted task plan data, matching the schema provided in the system instructions.
`

const qualificationSystemTemplate = `You are an expert AI system specialized in analyzing equipment training manuals, operation manuals and technical documentation to extract the qualifications a technician must hold.

Primary Objectives:
1. Identify the skills, certifications and safety training the manual requires.
2. Determine which tasks need specific competencies (electrical, mechanical, hydraulic, confined space, lockout/tagout).
3. Express each requirement as one EAM qualification.

Output Requirements:
Generate a single JSON object with the key "qualifications", a LIST of objects with:
- "qualification_code": a unique, descriptive code such as "QUAL-ELEC-LV01", maximum 20 characters.
- "qualification_description": what the technician must be qualified for, maximum 80 characters.

Example:
{
    "qualifications": [
        {"qualification_code": "QUAL-LOTO-01", "qualification_description": "Lockout/tagout certified for hydraulic press isolation"},
        {"qualification_code": "QUAL-HYD-MAINT", "qualification_description": "Hydraulic system maintenance, pressure up to 3000 psi"}
    ]
}

Do not use markdown formatting. Return an empty list when the manual states no requirements.
`

const qualificationHumanTemplate = `Please analyze the following training manual document and extract the structured qualification requirements based on the requirements provided.

Training Manual Content:
{{.text}}

Respond with ONLY the JSON object adhering to the schema described in the system prompt.
`

const incidentSystemTemplate = `You are an AI expert in workplace safety incident analysis. Analyze the incident report and structure the findings into two parts:
1. Every hazard identified or inferred, each with ALL of its relevant precautions.
2. Links between equipment named in the incident, a KEY precaution for that equipment, and the hazard that precaution addresses.

Output Requirements:
Generate a single JSON object with two top-level keys: "identified_hazards" and "equipment_safety_links".

1. "identified_hazards": a LIST of Hazard objects, each with:
   - "hazard_code": a unique code you propose (e.g. "HAZ-INC001-BURN").
   - "description": a detailed description of the hazard.
   - "hazard_type": one of {{.hazard_type_options}}.
   - "precautions": a LIST of ALL precautions for this hazard, each with:
       - "precaution_code": a unique code you propose (e.g. "PREC-HAZ001-001").
       - "description": a detailed description of the precaution.
       - "timing" (optional): one of {{.precaution_timing_options}}.

2. "equipment_safety_links": a LIST of EquipmentSafetyLink objects. Only populate it when the report clearly ties specific equipment to a safety lapse on a precaution of an identified hazard. Each has:
   - "equipment_details": an object with
       - "equipment_id": (mandatory) the specific name or model (e.g. "Blowtorch Model X23").
       - "class_code" (optional): one of {{.equipment_class_options}}.
       - "category" (optional): one of {{.equipment_category_options}}.
   - "linked_precaution": an exact copy of one precaution listed under the matching hazard.
   - "parent_hazard_code": the hazard_code that linked_precaution belongs to.

Example:
{
    "identified_hazards": [
        {
            "hazard_code": "HAZ-BTORCH-001",
            "description": "Risk of burn injury from direct flame or heated parts of the blowtorch.",
            "hazard_type": "Physical Hazards",
            "precautions": [
                {"precaution_code": "PREC-BT001-PPE01", "description": "Wear heat-resistant gloves and a face shield.", "timing": "Pre Work"},
                {"precaution_code": "PREC-BT001-AREA02", "description": "Clear the work area of flammable materials before starting.", "timing": "Pre Work"},
                {"precaution_code": "PREC-BT001-OPER03", "description": "Never leave a lit blowtorch unattended.", "timing": "During"}
            ]
        },
        {
            "hazard_code": "HAZ-GASLEAK-002",
            "description": "Risk of explosion or fire from a gas leak at a faulty blowtorch connection.",
            "hazard_type": "Chemical Hazards",
            "precautions": [
                {"precaution_code": "PREC-GL002-INSP01", "description": "Inspect hose and connections for leaks with soapy water before each use.", "timing": "Pre Work"},
                {"precaution_code": "PREC-GL002-SHUT02", "description": "Close the gas cylinder valve when not in use.", "timing": "Post Work"}
            ]
        }
    ],
    "equipment_safety_links": [
        {
            "equipment_details": {"equipment_id": "SuperFlame Blowtorch SF-5000", "class_code": "HWEQ", "category": "Welding Tools"},
            "linked_precaution": {"precaution_code": "PREC-BT001-PPE01", "description": "Wear heat-resistant gloves and a face shield.", "timing": "Pre Work"},
            "parent_hazard_code": "HAZ-BTORCH-001"
        }
    ]
}

All codes must be unique and descriptive. If the report names no clear equipment link, "equipment_safety_links" may be empty, but "identified_hazards" should be populated whenever a hazard can be inferred.
Strictly follow this JSON structure. Do not use markdown formatting for the JSON output.
`

const incidentHumanTemplate = `Please analyze the following incident report document and extract the structured safety analysis based on the requirements provided.
Incident Report Text:
{{.text}}

Respond with ONLY the JSON object adhering to the schema described in the system prompt.
`
