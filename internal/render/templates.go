package render

// DefaultPageTemplate is the built-in mustache template for one type page.
// Link targets are emitted as xref markers and rewritten during the
// resolution pass, after every output path is known.
const DefaultPageTemplate = `# {{{name}}}

{{#namespace}}Namespace: {{{namespace}}}
{{/namespace}}{{#assembly}}Assembly: {{{assembly}}}
{{/assembly}}
{{#summary}}{{{summary}}}
{{/summary}}
{{#syntax}}` + "```csharp\n{{{syntax}}}\n```" + `
{{/syntax}}
{{#hasInheritance}}Inheritance:
{{#inheritance}}- <xref href="{{.}}"></xref>
{{/inheritance}}
{{/hasInheritance}}
{{#hasImplements}}Implements:
{{#implements}}- <xref href="{{.}}"></xref>
{{/implements}}
{{/hasImplements}}
{{#hasConstructors}}## Constructors

{{#constructors}}### <xref href="{{uid}}"></xref>

{{#summary}}{{{summary}}}
{{/summary}}
{{/constructors}}
{{/hasConstructors}}
{{#hasFields}}## Fields

{{#fields}}### <xref href="{{uid}}"></xref>

{{#summary}}{{{summary}}}
{{/summary}}
{{/fields}}
{{/hasFields}}
{{#hasProperties}}## Properties

{{#properties}}### <xref href="{{uid}}"></xref>

{{#summary}}{{{summary}}}
{{/summary}}
{{/properties}}
{{/hasProperties}}
{{#hasMethods}}## Methods

{{#methods}}### <xref href="{{uid}}"></xref>

{{#summary}}{{{summary}}}
{{/summary}}
{{/methods}}
{{/hasMethods}}
{{#hasEvents}}## Events

{{#events}}### <xref href="{{uid}}"></xref>

{{#summary}}{{{summary}}}
{{/summary}}
{{/events}}
{{/hasEvents}}
{{#remarks}}## Remarks

{{{remarks}}}
{{/remarks}}`
