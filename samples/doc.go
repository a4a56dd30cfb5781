/*
Package samples contains ready-made record types that exercise the
embedded collection machinery:

  - Gallery holds a polymorphic array of shapes. Each shape's "type"
    attribute selects Shape_Circle, Shape_Square or Shape_Polygon, and a
    shape without a type decodes as a plain Shape.
  - Polygon nests a further array of Point documents.
  - User embeds one primary UserAddress and an array of further addresses.
  - Image stores file metadata.

The DynamoDB key layout of the sample collections is kept in an embedded
OpenAPI document and returned by IndexMaps.
*/
package samples
