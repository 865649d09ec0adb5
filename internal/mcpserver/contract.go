package mcpserver

// DishFormatContract describes the canonical dish JSON format that
// LLM consumers should follow when creating dishes.
const DishFormatContract = `# Gourmet Dish Format Contract

Every dish created through MCP MUST follow this JSON structure.

## Structure

` + "```" + `json
{
  "name": "Spaghetti Bolognese",        // REQUIRED - display name, 1-200 chars
  "rating": 4,                           // OPTIONAL - integer 0-5, 0 means unrated
  "recipeLink": "https://...",           // OPTIONAL - source page URL
  "notes": "Free-form preparation notes",// OPTIONAL
  "image": "data:image/jpeg;base64,...", // OPTIONAL - data URI or plain URL
  "ingredients": [                       // OPTIONAL - may be empty
    {"name": "Hackfleisch", "amount": "500", "unit": "g"},
    {"name": "Zwiebel", "amount": "1", "unit": ""},
    {"name": "Salz", "amount": "", "unit": ""}
  ],
  "tags": ["Pasta", "Klassiker"]         // OPTIONAL - category names by value
}
` + "```" + `

## Rules

1. **` + "`" + `name` + "`" + ` is required.** Everything else may be omitted.
2. **Amounts are strings.** Recipe sources use ranges, fractions, and words
   ("etwas", "nach Geschmack"); keep whatever the source says. Plain numbers
   ("500", "0.5") are summed on shopping lists, anything else is not.
3. **Units stay free text** ("g", "ml", "EL", "TL", "Stück", "Dose").
   Shopping-list consolidation only merges ingredients with the same unit.
4. **Do not set** ` + "`" + `id` + "`" + `, ` + "`" + `timesCooked` + "`" + `, ` + "`" + `lastCooked` + "`" + `, or
   ` + "`" + `createdAt` + "`" + ` - the server assigns them.
5. **Tags** reference category names by value. Unknown tags are kept; they
   simply have no category until one with that name exists.
6. **German ingredient names** merge across singular/plural on shopping
   lists ("Zwiebel"/"Zwiebeln"), so either form is fine.

## Planning

- Use ` + "`" + `plan_dish` + "`" + ` with the ISO year and week number. A week holds at
  most 5 dishes; the sixth assignment is accepted but flagged in the UI.
- ` + "`" + `get_shopping_list` + "`" + ` consolidates the week's ingredients into a
  shopping list plus a pantry list of household staples (salt, oil, flour
  and the like). Water never appears on either list.
`
