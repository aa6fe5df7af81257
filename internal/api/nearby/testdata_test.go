package nearby

// hotelFixture holds three named lodging nodes and one unnamed node around
// Connaught Place, New Delhi.
const hotelFixture = `{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 1, "lat": 28.6400, "lon": 77.2200, "tags": {"name": "Far Hotel", "tourism": "hotel"}},
    {"type": "node", "id": 2, "lat": 28.6145, "lon": 77.2095, "tags": {"name": "Close Inn", "tourism": "guest_house"}},
    {"type": "node", "id": 3, "lat": 28.6200, "lon": 77.2100, "tags": {"name": "Middle Stay", "tourism": "hostel"}},
    {"type": "node", "id": 4, "lat": 28.6140, "lon": 77.2091, "tags": {"tourism": "hotel"}}
  ]
}`
