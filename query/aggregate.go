package query

var aggregates = []*Definition{
	{
		Label:   "Calculate the total number of rooms available by branch",
		Columns: []string{"Branch_Name", "AvailableRooms"},
		SQL: `SELECT hb.Branch_Name, COUNT(r.RoomID) AS AvailableRooms
FROM Room r
INNER JOIN Hospital_Branch hb USING (Branch_ID)
WHERE r.Availability = TRUE
GROUP BY hb.Branch_Name`,
	},
	{
		Label:   "Find patients who have visited multiple departments",
		Columns: []string{"PatientID", "FirstName", "LastName", "DepartmentCount"},
		SQL: `SELECT p.PatientID, p.FirstName, p.LastName, COUNT(DISTINCT doc.DepartmentID) AS DepartmentCount
FROM Patient p
INNER JOIN Appointment a USING (PatientID)
INNER JOIN Doctor doc USING (DoctorID)
GROUP BY p.PatientID, p.FirstName, p.LastName
HAVING COUNT(DISTINCT doc.DepartmentID) > 1`,
	},
	{
		Label:   "Generate a report showing total revenue per branch for the last month",
		Columns: []string{"Branch_Name", "TotalRevenue"},
		SQL: `SELECT hb.Branch_Name, SUM(b.TotalAmount) AS TotalRevenue
FROM Billing b
INNER JOIN Hospital_Branch hb USING (Branch_ID)
WHERE b.PaymentDate BETWEEN DATE_SUB(CURDATE(), INTERVAL 1 MONTH) AND CURDATE()
GROUP BY hb.Branch_Name`,
	},
	{
		Label:   "Total number of patients by branch and gender",
		Columns: []string{"Branch_Name", "Gender", "TotalPatients"},
		SQL: `SELECT hb.Branch_Name, p.Gender, COUNT(p.PatientID) AS TotalPatients
FROM Patient p
INNER JOIN Hospital_Branch hb USING (Branch_ID)
GROUP BY hb.Branch_Name, p.Gender`,
	},
	{
		Label:   "Calculate the total length of stay for each patient",
		Columns: []string{"PatientID", "PatientFullName", "TotalStayLength"},
		SQL: `SELECT
    p.PatientID,
    CONCAT(p.FirstName, ' ', p.LastName) AS PatientFullName,
    SUM(DATEDIFF(hs.DischargeDate, hs.AdmitDate)) AS TotalStayLength
FROM HospitalStay hs
INNER JOIN Patient p USING (PatientID)
GROUP BY p.PatientID, PatientFullName`,
	},
	{
		Label:   "Room Availability Summary by Branch",
		Columns: []string{"Branch_ID", "Branch_Name", "TotalRooms", "AvailableRooms"},
		SQL: `SELECT
    hb.Branch_ID,
    hb.Branch_Name,
    COUNT(r.RoomID) AS TotalRooms,
    SUM(CASE WHEN r.Availability = TRUE THEN 1 ELSE 0 END) AS AvailableRooms
FROM Room r
INNER JOIN Hospital_Branch hb USING (Branch_ID)
GROUP BY hb.Branch_ID, hb.Branch_Name`,
	},
	{
		Label:   "Availability by Room Type and Branch",
		Columns: []string{"RoomType", "Branch_Name", "TotalRooms", "AvailableRooms"},
		SQL: `SELECT
    r.RoomType,
    hb.Branch_Name,
    COUNT(r.RoomID) AS TotalRooms,
    SUM(CASE WHEN r.Availability = TRUE THEN 1 ELSE 0 END) AS AvailableRooms
FROM Room r
INNER JOIN Hospital_Branch hb ON r.Branch_ID = hb.Branch_ID
GROUP BY r.RoomType, hb.Branch_Name`,
	},
	{
		Label:   "Calculate the Number of Days Since Last Appointment",
		Columns: []string{"PatientID", "PatientFullName", "LastAppointmentDate", "DaysSinceLastAppointment"},
		SQL: `SELECT
    p.PatientID,
    CONCAT(p.FirstName, ' ', p.LastName) AS PatientFullName,
    MAX(a.AppointmentDate) AS LastAppointmentDate,
    DATEDIFF(CURDATE(), MAX(a.AppointmentDate)) AS DaysSinceLastAppointment
FROM Appointment a
INNER JOIN Patient p USING (PatientID)
GROUP BY p.PatientID, PatientFullName
HAVING DaysSinceLastAppointment > 0
ORDER BY DaysSinceLastAppointment DESC`,
	},
}
